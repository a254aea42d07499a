package topics

// Renderer turns raw topic content into what is printed on the terminal
type Renderer interface {
	// Render takes the content and its file extension (".md", ".txt")
	Render(content string, format string) string
}

// PlainRenderer returns content as-is
type PlainRenderer struct{}

// Render returns the content unchanged
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
