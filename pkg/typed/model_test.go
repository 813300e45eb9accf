package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/kiln/pkg/core"
	"github.com/aretw0/kiln/pkg/typed"
)

type Task struct {
	Title  string   `json:"Title"`
	Owners []string `json:"Owners"`
	Status string   `json:"Status"`
}

func task(id, title string, owners ...string) *core.Record {
	var idp *string
	if id != "" {
		idp = &id
	}
	r := core.NewRecord(idp)
	r.Properties["Title"] = title
	r.Properties["Owners"] = owners
	r.Tags = []string{"core"}
	return r
}

func TestDecode(t *testing.T) {
	m, err := typed.Decode[Task](task("t1", "Ship", "ana", "bo"))
	require.NoError(t, err)

	assert.Equal(t, "t1", m.ID)
	assert.Equal(t, []string{"core"}, m.Tags)
	assert.Equal(t, Task{Title: "Ship", Owners: []string{"ana", "bo"}}, m.Data)
}

func TestDecode_Errors(t *testing.T) {
	_, err := typed.Decode[Task](nil)
	assert.Error(t, err)

	_, err = typed.Decode[struct {
		Title int `json:"Title"`
	}](task("", "not a number"))
	assert.ErrorContains(t, err, "unmarshal to target type failed")
}

func TestDecodeAll(t *testing.T) {
	models, err := typed.DecodeAll[Task]([]*core.Record{task("a", "A"), task("", "B")})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "", models[1].ID)
	assert.Equal(t, "B", models[1].Data.Title)
}

type stubSource struct {
	records []*core.Record
	err     error
}

func (s stubSource) ReadFile(context.Context, string) ([]*core.Record, error) {
	return s.records, s.err
}

func TestReader(t *testing.T) {
	ctx := context.Background()
	r := typed.NewReader[Task](stubSource{records: []*core.Record{task("a", "A"), task("b", "B", "cy")}})

	all, err := r.ReadFile(ctx, "tasks.xml")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	b, err := r.Find(ctx, "tasks.xml", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"cy"}, b.Data.Owners)

	_, err = r.Find(ctx, "tasks.xml", "zz")
	assert.ErrorContains(t, err, "not found")

	boom := errors.New("boom")
	_, err = typed.NewReader[Task](stubSource{err: boom}).ReadFile(ctx, "x")
	assert.ErrorIs(t, err, boom)
}
