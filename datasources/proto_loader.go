/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package datasources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/recordgrid/core/rows"
)

// ListValueType is the default message type: a google.protobuf.ListValue
// whose elements are structs, one per row.
const ListValueType = "google.protobuf.ListValue"

// ProtoLoader implements Loader for protobuf files.
//
// Options:
//   - message_type: fully qualified message name (default: google.protobuf.ListValue)
//   - descriptor_set: path to a binary FileDescriptorSet defining message_type
//   - rows_field: repeated message field holding the rows (default: the
//     first repeated message field of message_type)
//   - format: "textproto", "json" or "binary" (inferred from the extension)
//
// Each row message becomes a row keyed by field name. Repeated message
// fields become nested collections, enums their value names and
// google.protobuf.Timestamp fields time values.
type ProtoLoader struct {
	mu sync.Mutex
	// registries from loaded descriptor sets, by path
	files map[string]*protoregistry.Files
}

// NewProtoLoader creates a new proto loader.
func NewProtoLoader() *ProtoLoader {
	return &ProtoLoader{files: make(map[string]*protoregistry.Files)}
}

// SourceType returns "proto".
func (l *ProtoLoader) SourceType() string {
	return "proto"
}

// Load reads src.Path.
func (l *ProtoLoader) Load(_ context.Context, src Source) ([]rows.Row, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proto file: %w", err)
	}
	format := src.Option("format", protoFormat(src.Path))
	messageType := src.Option("message_type", ListValueType)

	if messageType == ListValueType {
		var list structpb.ListValue
		if err := unmarshalProto(data, format, &list); err != nil {
			return nil, err
		}
		return listValueRows(&list)
	}

	files := protoregistry.GlobalFiles
	if ds := src.Option("descriptor_set", ""); ds != "" {
		if files, err = l.LoadDescriptorSet(ds); err != nil {
			return nil, err
		}
	}
	desc, err := files.FindDescriptorByName(protoreflect.FullName(messageType))
	if err != nil {
		return nil, fmt.Errorf("message %q not found: %w", messageType, err)
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("%q is not a message type", messageType)
	}
	msg := dynamicpb.NewMessage(md)
	if err := unmarshalProto(data, format, msg); err != nil {
		return nil, err
	}
	return MessageRows(msg, src.Option("rows_field", ""))
}

// LoadDescriptorSet reads a binary FileDescriptorSet. Sets are cached by
// path.
func (l *ProtoLoader) LoadDescriptorSet(path string) (*protoregistry.Files, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if files, ok := l.files[path]; ok {
		return files, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor set: %w", err)
	}
	var set descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor set: %w", err)
	}
	files, err := protodesc.NewFiles(&set)
	if err != nil {
		return nil, fmt.Errorf("failed to build descriptors: %w", err)
	}
	l.files[path] = files
	return files, nil
}

func protoFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".binpb", ".pb":
		return "binary"
	default:
		return "textproto"
	}
}

func unmarshalProto(data []byte, format string, m proto.Message) error {
	var err error
	switch format {
	case "textproto":
		err = prototext.Unmarshal(data, m)
	case "json":
		err = protojson.Unmarshal(data, m)
	case "binary":
		err = proto.Unmarshal(data, m)
	default:
		return fmt.Errorf("unknown proto format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", format, err)
	}
	return nil
}

func listValueRows(list *structpb.ListValue) ([]rows.Row, error) {
	out := make([]rows.Row, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("row %d: expected a struct value", i)
		}
		out = append(out, rows.Row(s.AsMap()))
	}
	return out, nil
}

// MessageRows returns one row per element of the repeated message field
// rowsField of msg. An empty rowsField picks the first repeated message
// field.
func MessageRows(msg protoreflect.ProtoMessage, rowsField string) ([]rows.Row, error) {
	m := msg.ProtoReflect()
	fd := rowsFieldOf(m.Descriptor(), rowsField)
	if fd == nil {
		if rowsField == "" {
			return nil, fmt.Errorf("%s has no repeated message field", m.Descriptor().FullName())
		}
		return nil, fmt.Errorf("%s has no repeated message field %q", m.Descriptor().FullName(), rowsField)
	}
	list := m.Get(fd).List()
	out := make([]rows.Row, list.Len())
	for i := 0; i < list.Len(); i++ {
		out[i] = messageToRow(list.Get(i).Message())
	}
	return out, nil
}

func rowsFieldOf(md protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	fields := md.Fields()
	if name != "" {
		fd := fields.ByName(protoreflect.Name(name))
		if fd == nil || !fd.IsList() || fd.Kind() != protoreflect.MessageKind {
			return nil
		}
		return fd
	}
	for i := 0; i < fields.Len(); i++ {
		if fd := fields.Get(i); fd.IsList() && fd.Kind() == protoreflect.MessageKind {
			return fd
		}
	}
	return nil
}

// messageToRow converts a message to a row. Unset fields with presence are
// left out so they read as blanks.
func messageToRow(m protoreflect.Message) rows.Row {
	fields := m.Descriptor().Fields()
	row := make(rows.Row, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		name := string(fd.Name())
		switch {
		case fd.IsList():
			list := m.Get(fd).List()
			vals := make([]any, list.Len())
			for j := 0; j < list.Len(); j++ {
				vals[j] = protoValue(fd, list.Get(j))
			}
			row[name] = vals
		case fd.IsMap():
			entries := make(map[string]any)
			m.Get(fd).Map().Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
				entries[k.String()] = protoValue(fd.MapValue(), v)
				return true
			})
			row[name] = entries
		default:
			if fd.HasPresence() && !m.Has(fd) {
				continue
			}
			row[name] = protoValue(fd, m.Get(fd))
		}
	}
	return row
}

func protoValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BytesKind:
		return string(v.Bytes())
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int64(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		m := v.Message()
		if m.Descriptor().FullName() == "google.protobuf.Timestamp" {
			fields := m.Descriptor().Fields()
			secs := m.Get(fields.ByName("seconds")).Int()
			nanos := m.Get(fields.ByName("nanos")).Int()
			return time.Unix(secs, nanos).UTC()
		}
		return messageToRow(m)
	default:
		return v.Interface()
	}
}
