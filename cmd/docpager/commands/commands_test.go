package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Alp4ka/docpager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func Test_parseKeyFlag(t *testing.T) {
	tests := []struct {
		in        string
		field     string
		direction docpager.Direction
		coerced   bool
		wantErr   bool
	}{
		{in: "createdAt", field: "createdAt", direction: docpager.DirectionASC},
		{in: "createdAt:desc", field: "createdAt", direction: docpager.DirectionDESC},
		{in: "createdAt:DESC:time", field: "createdAt", direction: docpager.DirectionDESC, coerced: true},
		{in: "likes::int", field: "likes", direction: docpager.DirectionASC, coerced: true},
		{in: "", wantErr: true},
		{in: "likes:up", wantErr: true},
		{in: "likes:asc:decimal", wantErr: true},
		{in: "likes:asc:int:extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, err := parseKeyFlag(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, docpager.ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field, key.Field)
			assert.Equal(t, tt.direction, key.Direction)
			assert.Equal(t, tt.coerced, key.Coerce != nil)
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func Test_EncodeDecode(t *testing.T) {
	const oid = "65a1f0c2e4b0a1b2c3d4e5f6"

	for _, secret := range []string{"", "s3cr3t"} {
		t.Run("secret="+secret, func(t *testing.T) {
			token, err := run(t, "encode", "--secret", secret, "--key", "likes:desc:int", "likes=30", "_id="+oid)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			out, err := run(t, "decode", "--secret", secret, token)
			require.NoError(t, err)

			var decoded decodeOutput
			require.NoError(t, json.Unmarshal([]byte(out), &decoded))
			assert.Equal(t, "decoded", decoded.Status)
			assert.Equal(t, "likes:DESC,_id:ASC", decoded.Scheme)
			assert.EqualValues(t, 30, decoded.Values["likes"])
			assert.Equal(t, oid, decoded.Values["_id"])
		})
	}

	token, err := run(t, "encode", "--secret", "s3cr3t", "_id="+oid)
	require.NoError(t, err)

	out, err := run(t, "decode", "--secret", "other", token)
	assert.ErrorIs(t, err, errUnusableCursor)
	assert.Contains(t, out, `"status": "invalid"`)

	_, err = run(t, "encode", "likes")
	assert.Error(t, err)
}

func Test_EncodeUntypedKey(t *testing.T) {
	token, err := run(t, "encode", "--key", "likes:desc", "likes=30", "_id=65a1f0c2e4b0a1b2c3d4e5f6")
	require.NoError(t, err)

	res := docpager.NewCodec("").Decode(token)
	require.Equal(t, docpager.CursorDecoded, res.Status, "err=%v", res.Err)
	assert.Equal(t, int64(30), res.Payload.Values["likes"])
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", res.Payload.Values["_id"])
}

func Test_scalarValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"30", int64(30)},
		{"-2.5", -2.5},
		{"true", true},
		{"false", false},
		{"t", "t"},
		{"NaN", "NaN"},
		{"ann", "ann"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, scalarValue(tt.in))
		})
	}
}

func Test_Filter(t *testing.T) {
	token, err := run(t, "encode", "--key", "likes:desc:int", "likes=30", "_id=65a1f0c2e4b0a1b2c3d4e5f6")
	require.NoError(t, err)

	out, err := run(t, "filter", "--key", "likes:desc:int", "--filter", `{"author":"ann"}`, "--before", token, "--limit", "5")
	require.NoError(t, err)

	var got bson.M
	require.NoError(t, bson.UnmarshalExtJSON([]byte(out), false, &got))

	assert.Equal(t, true, got["reverse"])
	assert.EqualValues(t, 5, got["limit"])

	filter, ok := got["filter"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "ann", filter["author"])
	assert.Contains(t, filter, "$or")

	sort, ok := got["sort"].(bson.M)
	require.True(t, ok)
	assert.EqualValues(t, 1, sort["likes"])
	assert.EqualValues(t, -1, sort["_id"])

	_, err = run(t, "filter", "--after", "a", "--before", "b")
	assert.ErrorIs(t, err, docpager.ErrAmbiguousCursors)

	_, err = run(t, "filter", "--filter", "{")
	assert.Error(t, err)
}
