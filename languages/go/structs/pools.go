package structs

import (
	"bytes"

	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
)

// buffers holds scratch buffers for rendering Structs as text.
var buffers = sync.NewPool[*bytes.Buffer](
	context.Background(),
	"structsBuffers",
	func() *bytes.Buffer {
		return &bytes.Buffer{}
	},
	sync.WithBuffer(10),
)

func getBuffer() *bytes.Buffer {
	b := buffers.Get(context.Background())
	b.Reset()
	return b
}

func putBuffer(b *bytes.Buffer) {
	buffers.Put(context.Background(), b)
}
