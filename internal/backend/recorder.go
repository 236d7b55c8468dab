package backend

import "sync"

// Recorder keeps every call for inspection. It is safe for use behind
// Async.
type Recorder struct {
	mu      sync.Mutex
	draws   []*DrawRequest
	uploads []*TextureUpload
	clears  []*ClearRequest
	flips   []uint32
}

func (r *Recorder) Draw(d *DrawRequest) {
	r.mu.Lock()
	r.draws = append(r.draws, d)
	r.mu.Unlock()
}

func (r *Recorder) UploadTexture(u *TextureUpload) {
	r.mu.Lock()
	r.uploads = append(r.uploads, u)
	r.mu.Unlock()
}

func (r *Recorder) Clear(c *ClearRequest) {
	r.mu.Lock()
	r.clears = append(r.clears, c)
	r.mu.Unlock()
}

func (r *Recorder) Flip(buffer uint32) {
	r.mu.Lock()
	r.flips = append(r.flips, buffer)
	r.mu.Unlock()
}

func (r *Recorder) Draws() []*DrawRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*DrawRequest(nil), r.draws...)
}

func (r *Recorder) Uploads() []*TextureUpload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*TextureUpload(nil), r.uploads...)
}

func (r *Recorder) Clears() []*ClearRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ClearRequest(nil), r.clears...)
}

func (r *Recorder) Flips() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.flips...)
}

// LastUpload returns the most recent texture, or nil.
func (r *Recorder) LastUpload() *TextureUpload {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.uploads) == 0 {
		return nil
	}
	return r.uploads[len(r.uploads)-1]
}
