package transit

// Frame is a named, fully rendered output table. Connectors write frames without knowing
// which pipeline produced them.
type Frame struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Column returns the index of a header, or -1.
func (f Frame) Column(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}
