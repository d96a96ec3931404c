package mongodb

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type uuidDoc struct {
	ID uuid.UUID `bson:"_id"`
}

func marshalWithRegistry(t *testing.T, v interface{}) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	vw, err := bsonrw.NewBSONValueWriter(buf)
	require.NoError(t, err)
	enc, err := bson.NewEncoder(vw)
	require.NoError(t, err)
	require.NoError(t, enc.SetRegistry(NewRegistry()))
	require.NoError(t, enc.Encode(v))
	return buf.Bytes()
}

func unmarshalWithRegistry(t *testing.T, data []byte, v interface{}) error {
	t.Helper()

	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(data))
	require.NoError(t, err)
	require.NoError(t, dec.SetRegistry(NewRegistry()))
	return dec.Decode(v)
}

func TestUUIDCodec_WritesSubtype4(t *testing.T) {
	id := uuid.New()

	data := marshalWithRegistry(t, uuidDoc{ID: id})

	subtype, raw := bson.Raw(data).Lookup("_id").Binary()
	assert.Equal(t, bsontype.BinaryUUID, subtype)
	assert.Equal(t, id[:], raw)

	var decoded uuidDoc
	require.NoError(t, unmarshalWithRegistry(t, data, &decoded))
	assert.Equal(t, id, decoded.ID)
}

func TestUUIDCodec_FilterUsesSubtype4(t *testing.T) {
	id := uuid.New()

	data := marshalWithRegistry(t, bson.M{"_id": id})

	subtype, _ := bson.Raw(data).Lookup("_id").Binary()
	assert.Equal(t, bsontype.BinaryUUID, subtype)
}

func TestUUIDCodec_Decode(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		value   interface{}
		want    uuid.UUID
		wantErr bool
	}{
		{name: "generic subtype", value: primitive.Binary{Subtype: bsontype.BinaryGeneric, Data: id[:]}, want: id},
		{name: "legacy subtype", value: primitive.Binary{Subtype: bsontype.BinaryUUIDOld, Data: id[:]}, want: id},
		{name: "null", value: nil, want: uuid.Nil},
		{name: "wrong length", value: primitive.Binary{Subtype: bsontype.BinaryUUID, Data: []byte{1, 2, 3}}, wantErr: true},
		{name: "md5 subtype", value: primitive.Binary{Subtype: bsontype.BinaryMD5, Data: id[:]}, wantErr: true},
		{name: "string", value: id.String(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.D{{Key: "_id", Value: tt.value}})
			require.NoError(t, err)

			var decoded uuidDoc
			err = unmarshalWithRegistry(t, data, &decoded)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, decoded.ID)
		})
	}
}
