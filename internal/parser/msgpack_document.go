package parser

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/th2-export/backend/internal/models"
)

// MsgpackDecoder reads the canonical project document in MessagePack form.
type MsgpackDecoder struct {
	formatMatcher
}

func NewMsgpackDecoder() *MsgpackDecoder {
	return &MsgpackDecoder{formatMatcher{
		mediaTypes: []string{"application/msgpack", "application/x-msgpack", "application/vnd.msgpack"},
		extensions: []string{".msgpack", ".mpk"},
	}}
}

func (d *MsgpackDecoder) Name() string { return "msgpack" }

func (d *MsgpackDecoder) CanDecode(contentType, fileName string) bool {
	return d.matches(contentType, fileName)
}

func (d *MsgpackDecoder) Decode(r io.Reader) (models.Project, error) {
	var doc Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return models.Project{}, fmt.Errorf("decoding msgpack document: %w", err)
	}
	return doc.ToProject()
}
