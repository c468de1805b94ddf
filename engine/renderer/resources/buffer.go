package resources

import (
	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

/**
 * @brief The CPU side storage shared by vertex, index and texture resources.
 * A buffer owns exactly ElementCount * ElementSize bytes.
 */
type Buffer struct {
	data         []byte
	elementCount uint32
	elementSize  uint32
	usage        metadata.BufferUsage
}

func newBuffer(elementCount, elementSize uint32, usage metadata.BufferUsage) Buffer {
	return Buffer{
		data:         make([]byte, elementCount*elementSize),
		elementCount: elementCount,
		elementSize:  elementSize,
		usage:        usage,
	}
}

func (b *Buffer) Data() []byte {
	return b.data
}

func (b *Buffer) ElementCount() uint32 {
	return b.elementCount
}

func (b *Buffer) ElementSize() uint32 {
	return b.elementSize
}

func (b *Buffer) Usage() metadata.BufferUsage {
	return b.usage
}

func (b *Buffer) SizeBytes() uint32 {
	return b.elementCount * b.elementSize
}
