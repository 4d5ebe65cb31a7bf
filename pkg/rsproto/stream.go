package rsproto

// Create creates a stream with broker-side arguments such as
// max-length-bytes or max-age.
type Create struct {
	correlation
	Stream    string
	Arguments map[string]string
}

func NewCreate(stream string, arguments map[string]string) *Create {
	return &Create{
		Stream:    stream,
		Arguments: arguments,
	}
}

func (c *Create) Key() uint16 {
	return CommandCreate
}

func (c *Create) Version() uint16 {
	return Version1
}

func (c *Create) SizeNeeded() int {
	size := correlatedHeaderSize + StringSize(c.Stream) + 4
	for k, v := range c.Arguments {
		size += StringSize(k) + StringSize(v)
	}
	return size
}

func (c *Create) Write(enc *Encoder) (int, error) {
	n := c.writeHeader(enc, CommandCreate)
	n += enc.WriteString(c.Stream)
	n += enc.WriteInt32(int32(len(c.Arguments)))
	for k, v := range c.Arguments {
		n += enc.WriteString(k)
		n += enc.WriteString(v)
	}
	return n, nil
}

// Delete Delete
type Delete struct {
	correlation
	Stream string
}

func NewDelete(stream string) *Delete {
	return &Delete{Stream: stream}
}

func (d *Delete) Key() uint16 {
	return CommandDelete
}

func (d *Delete) Version() uint16 {
	return Version1
}

func (d *Delete) SizeNeeded() int {
	return correlatedHeaderSize + StringSize(d.Stream)
}

func (d *Delete) Write(enc *Encoder) (int, error) {
	n := d.writeHeader(enc, CommandDelete)
	n += enc.WriteString(d.Stream)
	return n, nil
}
