package catalog

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/datahub/backend/internal/store"
)

// TagMeta is one entry of a tags_with_meta list.
type TagMeta struct {
	Name    string
	AddedBy *uint
}

// Upload is binary content accompanying a file creation.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type CreateFileInput struct {
	UserID      uint
	Filename    string
	Description *string
	// Tags and TagString are merged when TagsWithMeta does not apply.
	Tags      []string
	TagString string
	// MetaSupplied is set when tags_with_meta was a non-empty list. It then
	// wins over Tags and TagString even if no entry was usable.
	TagsWithMeta []TagMeta
	MetaSupplied bool
	Upload       *Upload
}

// FilePatch holds the keys present in a partial file update.
type FilePatch struct {
	Filename        *string
	Description     *string
	HasDescription  bool
	Tags            []string
	HasTags         bool
	TagsWithMeta    []TagMeta
	HasTagsWithMeta bool
}

type CreateCollectionInput struct {
	Name    string
	UserID  uint
	FileIDs []uint
}

// CollectionPatch holds the keys present in a partial collection update.
type CollectionPatch struct {
	Name       *string
	FileIDs    []uint
	HasFileIDs bool
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// DecodeTagsWithMeta reads a tags_with_meta value. list reports whether the
// value was a JSON array; entries that are not objects or have a blank name
// are skipped before added_by is looked at.
func DecodeTagsWithMeta(raw json.RawMessage) (entries []TagMeta, list bool, err error) {
	if isNull(raw) {
		return nil, false, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, nil
	}

	entries = make([]TagMeta, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}

		var name string
		if rawName, ok := obj["name"]; ok && !isNull(rawName) {
			name = scalarString(rawName)
		}
		if strings.TrimSpace(name) == "" {
			continue
		}

		addedBy, err := decodeUserRef(obj["added_by"])
		if err != nil {
			return nil, true, err
		}

		entries = append(entries, TagMeta{Name: name, AddedBy: addedBy})
	}
	return entries, true, nil
}

// SetTagsWithMeta records a tags_with_meta value on the input. Only a
// non-empty list takes precedence over plain tag names.
func (in *CreateFileInput) SetTagsWithMeta(raw json.RawMessage) error {
	entries, list, err := DecodeTagsWithMeta(raw)
	if err != nil || !list {
		return err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	in.TagsWithMeta = entries
	in.MetaSupplied = len(items) > 0
	return nil
}

func decodeUserRef(raw json.RawMessage) (*uint, error) {
	if isNull(raw) {
		return nil, nil
	}
	id, ok := parseID(raw)
	if !ok {
		return nil, invalid("added_by must be a user id")
	}
	return &id, nil
}

// DecodeTagNames reads a tags value given either as a list of names or as a
// comma separated string. list reports whether the value was a JSON array.
func DecodeTagNames(raw json.RawMessage) (names []string, list bool) {
	if isNull(raw) {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		names = make([]string, 0, len(items))
		for _, item := range items {
			if isNull(item) {
				continue
			}
			names = append(names, scalarString(item))
		}
		return names, true
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return SplitTagString(joined), false
	}
	return nil, false
}

// SplitTagString splits a comma separated tag list, dropping blanks.
func SplitTagString(value string) []string {
	var names []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// DecodeFileIDs reads a file_ids value. Anything but a list of ids is invalid.
func DecodeFileIDs(raw json.RawMessage) ([]uint, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, invalid("file_ids must be a list of file ids")
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		id, ok := parseID(item)
		if !ok {
			return nil, invalid("file_ids must be a list of file ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseID accepts a positive integer given as a JSON number or string.
func ParseID(raw json.RawMessage) (uint, bool) {
	return parseID(raw)
}

func parseID(raw json.RawMessage) (uint, bool) {
	switch v := decodeScalar(raw).(type) {
	case json.Number:
		return ParseIDString(v.String())
	case string:
		return ParseIDString(v)
	default:
		return 0, false
	}
}

// ParseIDString parses a positive decimal id.
func ParseIDString(value string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, false
	}
	return uint(id), true
}

func scalarString(raw json.RawMessage) string {
	switch v := decodeScalar(raw).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func decodeScalar(raw json.RawMessage) interface{} {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil
	}
	return value
}

// tagEntries applies the creation precedence: a supplied metadata list wins,
// otherwise list and comma string names are merged without provenance.
func (in CreateFileInput) tagEntries() []store.TagEntry {
	if in.MetaSupplied {
		return metaEntries(in.TagsWithMeta)
	}

	names := append([]string{}, in.Tags...)
	names = append(names, SplitTagString(in.TagString)...)
	return nameEntries(names)
}

func metaEntries(metas []TagMeta) []store.TagEntry {
	entries := make([]store.TagEntry, 0, len(metas))
	for _, meta := range metas {
		entries = append(entries, store.TagEntry{Name: meta.Name, AddedBy: meta.AddedBy})
	}
	return entries
}

func nameEntries(names []string) []store.TagEntry {
	entries := make([]store.TagEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, store.TagEntry{Name: name})
	}
	return entries
}
