package conc

// Future 异步任务结果
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{ch: make(chan struct{})}
}

func (f *Future[T]) complete(v T, err error) {
	f.value = v
	f.err = err
	close(f.ch)
}

// Inner 返回完成信号 channel，任务结束后关闭
func (f *Future[T]) Inner() <-chan struct{} {
	return f.ch
}

// Done 任务是否已结束
func (f *Future[T]) Done() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Await 阻塞等待任务结果
func (f *Future[T]) Await() (T, error) {
	<-f.ch
	return f.value, f.err
}

// Err 等待任务结束并返回错误
func (f *Future[T]) Err() error {
	<-f.ch
	return f.err
}

// Go 在新的 goroutine 中执行 fn
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		var v T
		var err error
		defer func() { f.complete(v, err) }()
		v, err = fn()
	}()
	return f
}
