package types

// Success payloads, one per command.

// ExistsData answers host.fs.exists.
type ExistsData struct {
	Exists bool `json:"exists"`
}

// TextData answers host.fs.readTextFile.
type TextData struct {
	Text string `json:"text"`
}

// EntriesData answers host.fs.listDir. Entries is sorted ascending.
type EntriesData struct {
	Entries []string `json:"entries"`
}

// ValueData answers host.store.get. Value is nil when the key is absent and
// encodes as JSON null.
type ValueData struct {
	Value *string `json:"value"`
}

// SetData answers host.store.set.
type SetData struct {
	OK bool `json:"ok"`
}
