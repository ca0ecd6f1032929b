package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/bjorheimar/catalog-sync/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	creates   int
	createErr error
	docs      map[string]interface{}
	failID    string
}

func (f *fakeIndex) CreateIndex(ctx context.Context, index, mapping string) error {
	f.creates++
	return f.createErr
}

func (f *fakeIndex) Index(ctx context.Context, index, id string, doc interface{}) error {
	if id == f.failID {
		return errors.New("rejected")
	}
	if f.docs == nil {
		f.docs = map[string]interface{}{}
	}
	f.docs[index+"/"+id] = doc
	return nil
}

func product(id, ext string) model.Product {
	return model.Product{BaseModel: model.BaseModel{ID: id}, ExternalID: ext, Name: "Beer " + ext}
}

func TestIndexProducts(t *testing.T) {
	es := &fakeIndex{}
	ix := New(es)
	ctx := context.Background()

	require.NoError(t, ix.IndexProducts(ctx, []model.Product{product("a", "1"), product("b", "2")}))
	require.NoError(t, ix.IndexProducts(ctx, []model.Product{product("c", "3")}))

	assert.Equal(t, 1, es.creates)
	assert.Len(t, es.docs, 3)
	assert.Contains(t, es.docs, "products/a")
}

func TestIndexProducts_Errors(t *testing.T) {
	es := &fakeIndex{createErr: errors.New("cluster red")}
	ix := New(es)

	err := ix.IndexProducts(context.Background(), []model.Product{product("a", "1")})
	require.Error(t, err)
	assert.Empty(t, es.docs)

	// Index creation is retried on the next call.
	es.createErr = nil
	es.failID = "b"
	err = ix.IndexProducts(context.Background(), []model.Product{product("a", "1"), product("b", "2")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product 2")
	assert.Len(t, es.docs, 1)
	assert.Equal(t, 2, es.creates)
}
