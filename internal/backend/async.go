package backend

import "sync"

// Async runs a Renderer on its own goroutine. Submissions are queued in
// order; the caller does not wait for execution.
type Async struct {
	r    Renderer
	jobs chan func(Renderer)
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewAsync starts the worker. depth bounds the queue; a full queue blocks
// the submitter, which is the backpressure on the decoder.
func NewAsync(r Renderer, depth int) *Async {
	if depth <= 0 {
		depth = 64
	}
	a := &Async{r: r, jobs: make(chan func(Renderer), depth), done: make(chan struct{})}
	go a.loop()
	return a
}

func (a *Async) loop() {
	defer close(a.done)
	for job := range a.jobs {
		job(a.r)
	}
}

func (a *Async) submit(job func(Renderer)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.jobs <- job
}

func (a *Async) Draw(r *DrawRequest)            { a.submit(func(x Renderer) { x.Draw(r) }) }
func (a *Async) UploadTexture(u *TextureUpload) { a.submit(func(x Renderer) { x.UploadTexture(u) }) }
func (a *Async) Clear(c *ClearRequest)          { a.submit(func(x Renderer) { x.Clear(c) }) }
func (a *Async) Flip(buffer uint32)             { a.submit(func(x Renderer) { x.Flip(buffer) }) }

// Sync blocks until everything submitted so far has executed.
func (a *Async) Sync() {
	ch := make(chan struct{})
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return
	}
	a.jobs <- func(Renderer) { close(ch) }
	a.mu.Unlock()
	<-ch
}

// Close drains the queue and stops the worker. Later submissions are
// dropped.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.jobs)
	}
	a.mu.Unlock()
	<-a.done
}
