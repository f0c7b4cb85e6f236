package retry_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"qualisync.app/bridge/common/retry"
)

var _ = Describe("Do", func() {
	var ctx context.Context

	noBackoff := func(int) time.Duration { return 0 }

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("returns immediately on success", func() {
		calls := 0
		err := retry.Do(ctx, retry.Policy{MaxAttempts: 3, Backoff: noBackoff}, func() error {
			calls++
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("retries until the policy is exhausted", func() {
		calls := 0
		boom := errors.New("boom")
		err := retry.Do(ctx, retry.Policy{MaxAttempts: 3, Backoff: noBackoff}, func() error {
			calls++
			return boom
		})

		Expect(err).To(MatchError(boom))
		Expect(calls).To(Equal(3))
	})

	It("succeeds partway through the attempts", func() {
		calls := 0
		err := retry.Do(ctx, retry.Policy{MaxAttempts: 3, Backoff: noBackoff}, func() error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(2))
	})

	It("stops at the first non-retryable error", func() {
		calls := 0
		fatal := errors.New("fatal")
		policy := retry.Policy{
			MaxAttempts: 3,
			Backoff:     noBackoff,
			Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
		}

		err := retry.Do(ctx, policy, func() error {
			calls++
			return fatal
		})

		Expect(err).To(MatchError(fatal))
		Expect(calls).To(Equal(1))
	})

	It("returns the last error unwrapped", func() {
		boom := errors.New("boom")
		err := retry.Do(ctx, retry.Policy{MaxAttempts: 2, Backoff: noBackoff}, func() error {
			return boom
		})

		Expect(err).To(BeIdenticalTo(boom))
	})

	It("stops waiting when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		policy := retry.Policy{
			MaxAttempts: 3,
			Backoff:     func(int) time.Duration { return time.Hour },
		}

		calls := 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := retry.Do(cancelled, policy, func() error {
			calls++
			return errors.New("transient")
		})

		Expect(err).To(MatchError(context.Canceled))
		Expect(calls).To(Equal(1))
	})

	It("treats a zero-attempt policy as one attempt", func() {
		calls := 0
		err := retry.Do(ctx, retry.Policy{}, func() error {
			calls++
			return errors.New("boom")
		})

		Expect(err).To(HaveOccurred())
		Expect(calls).To(Equal(1))
	})
})
