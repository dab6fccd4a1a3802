package zarr

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/datatree/errs"
)

// ConsolidateMetadata collects every .zgroup, .zattrs and .zarray document
// of store into the root .zmetadata key, replacing any previous one.
func ConsolidateMetadata(store Store) error {
	keys, err := store.List("")
	if err != nil {
		return err
	}

	meta := consolidatedMeta{
		Metadata:               make(map[string]json.RawMessage),
		ZarrConsolidatedFormat: 1,
	}
	for _, key := range keys {
		if !isMetadataKey(key) {
			continue
		}
		data, err := store.Get(key)
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return errors.Wrapf(errs.ErrInvalidMetadata, "%s is not JSON", key)
		}
		meta.Metadata[key] = data
	}

	doc, err := marshal(meta)
	if err != nil {
		return err
	}

	return store.Set(ConsolidatedMetaKey, doc)
}

func isMetadataKey(key string) bool {
	base := key[strings.LastIndex(key, "/")+1:]
	return base == GroupMetaKey || base == AttrsKey || base == ArrayMetaKey
}
