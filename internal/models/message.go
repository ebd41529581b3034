package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the coarse media type of a message payload.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindFile  Kind = "file"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage, KindVideo, KindFile:
		return true
	}
	return false
}

// Attachment is the classification of a message body. Text kinds carry
// Content, every other kind carries FileName.
type Attachment struct {
	Kind     Kind
	Content  string
	FileName string
}

// TextAttachment builds a plain text classification.
func TextAttachment(content string) Attachment {
	return Attachment{Kind: KindText, Content: content}
}

// FileAttachment builds a media classification pointing at a stored file.
func FileAttachment(kind Kind, fileName string) Attachment {
	return Attachment{Kind: kind, FileName: fileName}
}

type attachmentJSON struct {
	Type     Kind    `json:"type"`
	Content  *string `json:"content,omitempty"`
	FileName *string `json:"fileName,omitempty"`
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	if !a.Kind.Valid() {
		return nil, fmt.Errorf("marshal attachment: unknown kind %q", a.Kind)
	}
	out := attachmentJSON{Type: a.Kind}
	if a.Kind == KindText {
		content := a.Content
		out.Content = &content
	} else {
		name := a.FileName
		out.FileName = &name
	}
	return json.Marshal(out)
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var in attachmentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return fmt.Errorf("unmarshal attachment: unknown kind %q", in.Type)
	}
	if in.Type == KindText {
		if in.Content == nil || in.FileName != nil {
			return errors.New("unmarshal attachment: text requires content only")
		}
		*a = TextAttachment(*in.Content)
		return nil
	}
	if in.FileName == nil || in.Content != nil {
		return fmt.Errorf("unmarshal attachment: %s requires fileName only", in.Type)
	}
	*a = FileAttachment(in.Type, *in.FileName)
	return nil
}

// Message is one parsed transcript entry.
type Message struct {
	ID        int        `json:"id" yaml:"id"`
	Date      string     `json:"date" yaml:"date"`
	Time      string     `json:"time" yaml:"time"`
	Author    string     `json:"author" yaml:"author"`
	Content   string     `json:"content" yaml:"content"`
	Processed Attachment `json:"processed" yaml:"processed"`
}

// MarshalYAML keeps the YAML export shaped like the JSON one.
func (a Attachment) MarshalYAML() (interface{}, error) {
	if a.Kind == KindText {
		return map[string]string{"type": string(a.Kind), "content": a.Content}, nil
	}
	return map[string]string{"type": string(a.Kind), "fileName": a.FileName}, nil
}
