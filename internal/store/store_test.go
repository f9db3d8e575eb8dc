package store

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_OrderAndSections(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql": {Data: []byte("-- +migrate Up\nCREATE INDEX b;\n-- +migrate Down\nDROP INDEX b;\n")},
		"m/0001_a.sql": {Data: []byte("CREATE TABLE a (id INT);")},
		"m/0003_c.sql": {Data: []byte("-- +migrate Up\n\n-- +migrate Down\nDROP TABLE c;")},
		"m/README.md":  {Data: []byte("ignored")},
	}
	ms, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "0001_a.sql", ms[0].Name)
	assert.Equal(t, "CREATE TABLE a (id INT);", ms[0].Up)
	assert.Equal(t, "CREATE INDEX b;", ms[1].Up)
}

func TestProfileUpdate(t *testing.T) {
	assert.True(t, ProfileUpdate{}.Empty())

	first := "Jonathan"
	u := User{FirstName: "Jon", LastName: "Morales"}
	upd := ProfileUpdate{FirstName: &first}
	assert.False(t, upd.Empty())
	upd.Apply(&u)
	assert.Equal(t, "Jonathan", u.FirstName)
	assert.Equal(t, "Morales", u.LastName)
}

type fakeAdapter struct{ name string }

func (f fakeAdapter) Name() string      { return f.name }
func (f fakeAdapter) Aliases() []string { return []string{f.name + "-alias"} }
func (f fakeAdapter) Connect(context.Context, Config) (Store, error) {
	return nil, ErrNotFound
}

func TestRegistry(t *testing.T) {
	RegisterAdapter(fakeAdapter{name: "fake"})

	a, ok := GetAdapter("FAKE-alias")
	require.True(t, ok)
	assert.Equal(t, "fake", a.Name())
	assert.Contains(t, Drivers(), "fake")

	assert.Panics(t, func() { RegisterAdapter(fakeAdapter{name: "fake"}) })

	_, err := Open(context.Background(), Config{Driver: "nope"})
	assert.Error(t, err)
	_, err = Open(context.Background(), Config{Driver: "fake"})
	assert.ErrorIs(t, err, ErrNotFound)
}
