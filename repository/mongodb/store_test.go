package mongodb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// asBSON converts a document struct into the shape mock cursors expect.
func asBSON(t testing.TB, doc any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var out bson.D
	require.NoError(t, bson.Unmarshal(raw, &out))
	return out
}

func cursor(mt *mtest.T, ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, mt.DB.Name()+"."+ns, mtest.FirstBatch, docs...)
}

func matched(n int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

func duplicateKey(index string) bson.D {
	return duplicateKeyIn("identity.users", index, `{ userName: "alice" }`)
}

func duplicateKeyIn(ns, index, key string) bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{
		Index:   0,
		Code:    11000,
		Message: "E11000 duplicate key error collection: " + ns + " index: " + index + " dup key: " + key,
	})
}

// createdIndexes pops the createIndexes command sent during store
// construction and returns its index specs keyed by name, plus the names
// in the order they were sent.
func createdIndexes(mt *mtest.T) (map[string]bson.Raw, []string) {
	mt.Helper()
	started := mt.GetStartedEvent()
	require.NotNil(mt, started)
	require.Equal(mt, "createIndexes", started.CommandName)

	values, err := started.Command.Lookup("indexes").Array().Values()
	require.NoError(mt, err)
	specs := make(map[string]bson.Raw, len(values))
	names := make([]string, 0, len(values))
	for _, v := range values {
		doc := v.Document()
		name := doc.Lookup("name").StringValue()
		specs[name] = doc
		names = append(names, name)
	}
	return specs, names
}

func assertActiveUnique(mt *mtest.T, spec bson.Raw) {
	mt.Helper()
	require.NotNil(mt, spec)
	unique, ok := spec.Lookup("unique").BooleanOK()
	require.True(mt, ok)
	require.True(mt, unique)
	require.Equal(mt, "null", spec.Lookup("partialFilterExpression", fieldDeleteOn, "$type").StringValue())
}
