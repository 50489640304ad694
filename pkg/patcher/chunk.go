package patcher

type Chunker interface {
	GetName() string
	UpdateShdr(ctx *Context)
	CopyBuf(ctx *Context)
}

// Chunk is a piece of the image the patcher rewrites, located at Offset.
type Chunk struct {
	Name   string
	Offset uint64
}

func NewChunk(name string, offset uint64) Chunk {
	return Chunk{Name: name, Offset: offset}
}

func (c *Chunk) GetName() string {
	return c.Name
}
