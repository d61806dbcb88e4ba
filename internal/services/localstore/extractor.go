package localstore

import (
	"context"
	"strings"

	"github.com/rwcarlsen/goexif/exif"

	"curator/internal/media"
)

// Extract reads embedded EXIF metadata from the item. A file without a
// decodable EXIF block, or without an original capture date, yields
// empty metadata and no error; only I/O failures are errors. The file's
// modification time is never consulted: absent an embedded capture
// date, the item stays unverifiable.
func (s *Store) Extract(ctx context.Context, identity string) (media.Metadata, error) {
	reader, err := s.Download(ctx, identity)
	if err != nil {
		return media.Metadata{}, err
	}
	defer reader.Close()

	decoded, err := exif.Decode(reader)
	if err != nil {
		// No EXIF block is a property of the asset, not a failure.
		return media.Metadata{}, nil
	}

	meta := media.Metadata{Raw: make(map[string]string)}
	if captured, dtErr := decoded.DateTime(); dtErr == nil {
		meta.CapturedAt = captured.UTC()
	}
	meta.DeviceMake = tagString(decoded, exif.Make)
	meta.DeviceModel = tagString(decoded, exif.Model)
	meta.Width = tagInt(decoded, exif.PixelXDimension)
	meta.Height = tagInt(decoded, exif.PixelYDimension)

	for _, name := range []exif.FieldName{exif.Software, exif.LensModel, exif.GPSLatitudeRef, exif.GPSLongitudeRef} {
		if value := tagString(decoded, name); value != "" {
			meta.Raw[string(name)] = value
		}
	}
	return meta, nil
}

func tagString(decoded *exif.Exif, name exif.FieldName) string {
	tag, err := decoded.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func tagInt(decoded *exif.Exif, name exif.FieldName) int {
	tag, err := decoded.Get(name)
	if err != nil {
		return 0
	}
	value, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return value
}
