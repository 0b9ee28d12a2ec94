package model

// AssetIdentity is the content-stable identity of an audio asset.
// Token is the opaque acoustic fingerprint; Digest is hex(sha1(token)) and
// doubles as the remote object name stem, so the same recording always maps
// to the same object no matter how often it is ingested.
type AssetIdentity struct {
	Token  string
	Digest string
}

// AssetMetadata holds the tag metadata read from a source file.
// Tempo==0 and Duration<0 mean the field is absent.
type AssetMetadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Tempo       int    // BPM
	Duration    int    // seconds, -1 when unknown
	Cover       []byte // raw embedded cover art, nil when absent
	Fingerprint string // embedded acoustic fingerprint, "" when absent
}

// MissingCoreFields returns the missing members of the minimal subset
// needed to link an already-published asset into a playlist.
func (m *AssetMetadata) MissingCoreFields() []string {
	var missing []string
	if m.Title == "" {
		missing = append(missing, "title")
	}
	if m.Artist == "" {
		missing = append(missing, "artist")
	}
	if m.Album == "" {
		missing = append(missing, "album")
	}
	return missing
}

// MissingPublishFields returns the missing members of the full subset
// required before an asset may be transformed and published.
func (m *AssetMetadata) MissingPublishFields() []string {
	missing := m.MissingCoreFields()
	if m.Tempo <= 0 {
		missing = append(missing, "tempo")
	}
	if m.Duration < 0 {
		missing = append(missing, "duration")
	}
	return missing
}
