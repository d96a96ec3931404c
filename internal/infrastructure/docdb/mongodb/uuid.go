package mongodb

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var tUUID = reflect.TypeOf(uuid.UUID{})

// NewRegistry returns the default BSON registry with uuid.UUID stored as
// binary subtype 4, so other drivers and tools read identifiers as UUIDs.
func NewRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tUUID, bsoncodec.ValueEncoderFunc(encodeUUID))
	reg.RegisterTypeDecoder(tUUID, bsoncodec.ValueDecoderFunc(decodeUUID))
	return reg
}

func encodeUUID(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tUUID {
		return bsoncodec.ValueEncoderError{Name: "UUIDEncodeValue", Types: []reflect.Type{tUUID}, Received: val}
	}
	id := val.Interface().(uuid.UUID)
	return vw.WriteBinaryWithSubtype(id[:], bsontype.BinaryUUID)
}

// decodeUUID also accepts the legacy subtype 3 and the generic subtype 0
// that earlier versions of this service wrote.
func decodeUUID(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tUUID {
		return bsoncodec.ValueDecoderError{Name: "UUIDDecodeValue", Types: []reflect.Type{tUUID}, Received: val}
	}

	switch vr.Type() {
	case bsontype.Null:
		val.Set(reflect.Zero(tUUID))
		return vr.ReadNull()
	case bsontype.Undefined:
		val.Set(reflect.Zero(tUUID))
		return vr.ReadUndefined()
	case bsontype.Binary:
	default:
		return fmt.Errorf("cannot decode %v into a UUID", vr.Type())
	}

	data, subtype, err := vr.ReadBinary()
	if err != nil {
		return err
	}
	switch subtype {
	case bsontype.BinaryUUID, bsontype.BinaryUUIDOld, bsontype.BinaryGeneric:
	default:
		return fmt.Errorf("cannot decode binary subtype %#x into a UUID", subtype)
	}

	id, err := uuid.FromBytes(data)
	if err != nil {
		return fmt.Errorf("invalid UUID: %w", err)
	}
	val.Set(reflect.ValueOf(id))
	return nil
}
