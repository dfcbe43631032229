package telnet

import (
	"compress/zlib"
	"io"
)

// compressor wraps the connection's write side in a deflate stream with a
// synchronous flush after every logical write, as MCCP requires. The receive
// path stays uncompressed.
type compressor struct {
	zw  *zlib.Writer
	dst io.Writer
}

func newCompressor(dst io.Writer) *compressor {
	return &compressor{zw: zlib.NewWriter(dst), dst: dst}
}

// Write compresses and flushes one logical write. Clients decompress
// incrementally, so every write must be followed by a sync flush.
func (c *compressor) Write(p []byte) (int, error) {
	n, err := c.zw.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.zw.Flush()
}

// Close finalizes the deflate stream. Called during session teardown before
// the socket is destroyed.
func (c *compressor) Close() error {
	return c.zw.Close()
}
