package knowledge

// Document is a raw markdown source document as delivered by a loader.
// Name doubles as the chunk ID prefix, so loaders should keep it stable
// across rebuilds.
type Document struct {
	Name    string
	Content string
}
