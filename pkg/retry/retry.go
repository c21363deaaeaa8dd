// Package retry 提供有界、无退避的重试组合子
package retry

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted 在所有尝试都未满足条件时返回
var ErrExhausted = errors.New("retry: attempts exhausted")

// ExhaustedError 记录耗尽时的尝试次数与最后一次被拒绝的值
type ExhaustedError[T any] struct {
	Attempts int
	Last     T
}

func (e *ExhaustedError[T]) Error() string {
	return fmt.Sprintf("retry: no acceptable value after %d attempts (last: %v)", e.Attempts, e.Last)
}

func (e *ExhaustedError[T]) Unwrap() error {
	return ErrExhausted
}

// Attempt 每次尝试的生成函数，attempt 从 0 开始
type Attempt[T any] func(ctx context.Context, attempt int) (T, error)

// Predicate 判断生成值是否可接受
type Predicate[T any] func(ctx context.Context, v T) (bool, error)

// Until 反复调用 produce，直到 accept 返回 true 或达到 maxAttempts。
// produce 或 accept 返回的错误会立即中止并原样返回，不计入重试。
func Until[T any](ctx context.Context, maxAttempts int, produce Attempt[T], accept Predicate[T]) (T, error) {
	var last T
	if maxAttempts <= 0 {
		return last, &ExhaustedError[T]{Attempts: 0}
	}

	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		v, err := produce(ctx, i)
		if err != nil {
			return v, err
		}
		last = v

		ok, err := accept(ctx, v)
		if err != nil {
			return v, err
		}
		if ok {
			return v, nil
		}
	}

	return last, &ExhaustedError[T]{Attempts: maxAttempts, Last: last}
}
