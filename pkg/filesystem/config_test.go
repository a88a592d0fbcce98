package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	t.Run("ZeroValue", func(t *testing.T) {
		var cfg Config
		_, ok := cfg.Get("anything")
		assert.False(t, ok)
		assert.True(t, cfg.Bool(OptionRetainVisibility, true))
		assert.Equal(t, 0, cfg.Len())
	})

	t.Run("NewConfigCopies", func(t *testing.T) {
		values := map[string]any{"ContentType": "text/plain"}
		cfg := NewConfig(values)
		values["ContentType"] = "changed"

		got, _ := cfg.String("ContentType")
		assert.Equal(t, "text/plain", got)
	})

	t.Run("String", func(t *testing.T) {
		cfg := NewConfig(map[string]any{
			"a": "x",
			"b": "",
			"c": 42,
			"v": Public,
		})

		s, ok := cfg.String("a")
		assert.True(t, ok)
		assert.Equal(t, "x", s)

		_, ok = cfg.String("b")
		assert.False(t, ok)

		_, ok = cfg.String("c")
		assert.False(t, ok)

		s, ok = cfg.String("v")
		assert.True(t, ok)
		assert.Equal(t, "public", s)
	})

	t.Run("Visibility", func(t *testing.T) {
		v, ok := NewConfig(map[string]any{OptionVisibility: "public"}).Visibility()
		assert.True(t, ok)
		assert.Equal(t, Public, v)

		_, ok = Config{}.Visibility()
		assert.False(t, ok)
	})

	t.Run("ExtendOverrides", func(t *testing.T) {
		base := NewConfig(map[string]any{"a": "1", "b": "2"})
		extended := base.Extend(map[string]any{"b": "3", "c": "4"})

		b, _ := extended.String("b")
		c, _ := extended.String("c")
		assert.Equal(t, "3", b)
		assert.Equal(t, "4", c)

		b, _ = base.String("b")
		assert.Equal(t, "2", b, "base config must not change")
	})

	t.Run("WithDefaultsKeepsExisting", func(t *testing.T) {
		cfg := NewConfig(map[string]any{OptionVisibility: "public"}).
			WithDefaults(map[string]any{OptionVisibility: "private", OptionRetainVisibility: false})

		v, _ := cfg.Visibility()
		assert.Equal(t, Public, v)
		assert.False(t, cfg.Bool(OptionRetainVisibility, true))
	})
}

func TestStorageAttributes(t *testing.T) {
	var entries []StorageAttributes = []StorageAttributes{
		&FileAttributes{Path: "a.txt"},
		&DirectoryAttributes{Path: "dir"},
	}

	assert.True(t, entries[0].IsFile())
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, "a.txt", entries[0].Location())

	assert.True(t, entries[1].IsDir())
	assert.False(t, entries[1].IsFile())
	assert.Equal(t, "dir", entries[1].Location())
}
