package conc

import (
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
)

// ErrPoolFull 非阻塞模式下协程池已满
var ErrPoolFull = errors.New("conc: pool is full")

// Option 协程池选项
type Option func(*options)

type options struct {
	nonblocking  bool
	preAlloc     bool
	panicHandler func(any)
}

// WithNonblocking 池满时 Submit 立即失败而不是等待
func WithNonblocking(nonblocking bool) Option {
	return func(o *options) { o.nonblocking = nonblocking }
}

// WithPreAlloc 预分配 worker 队列
func WithPreAlloc(preAlloc bool) Option {
	return func(o *options) { o.preAlloc = preAlloc }
}

// WithPanicHandler 设置任务 panic 处理函数
func WithPanicHandler(fn func(any)) Option {
	return func(o *options) { o.panicHandler = fn }
}

// Pool 基于 ants 的泛型协程池
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建容量为 size 的协程池，size 不大于 0 时不限容量
func NewPool[T any](size int, opts ...Option) *Pool[T] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	antsOpts := []ants.Option{
		ants.WithNonblocking(o.nonblocking),
		ants.WithPreAlloc(o.preAlloc),
	}
	if o.panicHandler != nil {
		antsOpts = append(antsOpts, ants.WithPanicHandler(o.panicHandler))
	}

	p, err := ants.NewPool(size, antsOpts...)
	if err != nil {
		// 选项无效时退化为默认容量
		p, _ = ants.NewPool(runtime.GOMAXPROCS(0), antsOpts...)
	}
	return &Pool[T]{inner: p}
}

// NewDefaultPool 创建容量为 GOMAXPROCS 的协程池
func NewDefaultPool[T any](opts ...Option) *Pool[T] {
	return NewPool[T](runtime.GOMAXPROCS(0), opts...)
}

// Submit 提交任务
func (p *Pool[T]) Submit(fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	err := p.inner.Submit(func() {
		var v T
		var err error
		defer func() { f.complete(v, err) }()
		v, err = fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, ants.ErrPoolOverload) {
			err = ErrPoolFull
		}
		f.complete(zero, errors.Wrap(err, "conc: submit task"))
	}
	return f
}

// Running 正在运行的 worker 数量
func (p *Pool[T]) Running() int {
	return p.inner.Running()
}

// Cap 协程池容量
func (p *Pool[T]) Cap() int {
	return p.inner.Cap()
}

// Free 空闲容量
func (p *Pool[T]) Free() int {
	return p.inner.Free()
}

// Release 释放协程池
func (p *Pool[T]) Release() {
	p.inner.Release()
}
