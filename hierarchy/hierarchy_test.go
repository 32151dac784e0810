package hierarchy_test

import (
	"encoding/json"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/hierarchy"
	"github.com/strongdm/cedar-go-generators/schema"
)

const zeroUUID = "00000000-0000-0000-0000-000000000000"

func loadIndex(t *testing.T) *schema.Index {
	t.Helper()
	data, err := os.ReadFile("../schema/testdata/photoapp.json")
	require.NoError(t, err)
	var s schema.Schema
	require.NoError(t, s.UnmarshalJSON(data))
	require.NoError(t, s.Validate())
	return schema.NewIndex(&s)
}

func randomBytes(seed uint64, n int) []byte {
	r := rand.New(rand.NewPCG(seed, seed))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.Uint32())
	}
	return b
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, hierarchy.DefaultConfig().Validate())
	require.ErrorIs(t, hierarchy.Config{}.Validate(), hierarchy.ErrInvalidConfig)

	_, err := hierarchy.Generate(loadIndex(t), hierarchy.Config{MaxEntitiesPerType: -1}, arbitrary.New(nil))
	require.ErrorIs(t, err, hierarchy.ErrInvalidConfig)
}

func TestGenerateExhausted(t *testing.T) {
	t.Parallel()
	h, err := hierarchy.Generate(loadIndex(t), hierarchy.DefaultConfig(), arbitrary.New(nil))
	require.NoError(t, err)

	assert.Equal(t, 7, h.Len())
	assert.Equal(t, []types.EntityUID{types.NewEntityUID("PhotoApp::User", zeroUUID)}, h.UIDs("User"))
	assert.Equal(t, []types.EntityUID{
		types.NewEntityUID("PhotoApp::Color", "red"),
		types.NewEntityUID("PhotoApp::Color", "green"),
	}, h.UIDs("PhotoApp::Color"))

	edit, ok := h.Entity(types.NewEntityUID("PhotoApp::Action", "edit"))
	require.True(t, ok)
	assert.Equal(t, []types.EntityUID{types.NewEntityUID("PhotoApp::Action", "view")}, edit.Parents)

	user, ok := h.Entity(types.NewEntityUID("PhotoApp::User", zeroUUID))
	require.True(t, ok)
	assert.Empty(t, user.Parents)
}

func TestGenerateEdgesFollowSchema(t *testing.T) {
	t.Parallel()
	idx := loadIndex(t)
	s := idx.Schema()
	for seed := range uint64(50) {
		h, err := hierarchy.Generate(idx, hierarchy.DefaultConfig(), arbitrary.New(randomBytes(seed, 512)))
		require.NoError(t, err)
		for _, et := range idx.EntityTypes {
			n := len(h.UIDs(et))
			if choices := s.EnumChoices(et); choices != nil {
				assert.Equal(t, len(choices), n)
				continue
			}
			assert.GreaterOrEqual(t, n, 1, "seed %d type %s", seed, et)
			assert.LessOrEqual(t, n, hierarchy.DefaultConfig().MaxEntitiesPerType, "seed %d type %s", seed, et)
		}
		for _, e := range h.Entities() {
			for _, p := range e.Parents {
				require.True(t, h.Contains(p), "seed %d: dangling parent %s", seed, p)
				if e.UID.Type == s.ActionType() {
					continue
				}
				decl, ok := s.LookupEntity(e.UID.Type)
				require.True(t, ok)
				var declared []types.EntityType
				for _, m := range decl.MemberOf {
					declared = append(declared, s.Qualify(m))
				}
				assert.Contains(t, declared, p.Type, "seed %d", seed)
			}
		}
	}
}

func TestUIDWithType(t *testing.T) {
	t.Parallel()
	h, err := hierarchy.Generate(loadIndex(t), hierarchy.DefaultConfig(), arbitrary.New(nil))
	require.NoError(t, err)

	uid, err := h.UIDWithType("User", arbitrary.New([]byte{7}))
	require.NoError(t, err)
	assert.True(t, h.Contains(uid))

	uid, err = h.UIDWithType("Nope", arbitrary.New(nil))
	require.NoError(t, err)
	assert.Equal(t, types.NewEntityUID("PhotoApp::Nope", zeroUUID), uid)
	assert.False(t, h.Contains(uid))

	uid, err = hierarchy.GenerateUIDWithType("E", []types.String{"a", "b"}, arbitrary.New([]byte{1}))
	require.NoError(t, err)
	assert.Equal(t, types.NewEntityUID("E", "b"), uid)

	uid, err = hierarchy.GenerateUIDWithType("E", nil, arbitrary.New([]byte{1, 'h', 'i', 2}))
	require.NoError(t, err)
	assert.Equal(t, types.EntityType("E"), uid.Type)
}

func TestMarshal(t *testing.T) {
	t.Parallel()
	h, err := hierarchy.Generate(loadIndex(t), hierarchy.DefaultConfig(), arbitrary.New(nil))
	require.NoError(t, err)
	user, ok := h.Entity(types.NewEntityUID("PhotoApp::User", zeroUUID))
	require.True(t, ok)
	user.Attrs["age"] = types.Long(3)
	user.Tags["team"] = types.String("red")

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(h)
		require.NoError(t, err)

		var got []struct {
			UID     map[string]string   `json:"uid"`
			Parents []map[string]string `json:"parents"`
			Attrs   map[string]any      `json:"attrs"`
			Tags    map[string]any      `json:"tags"`
		}
		require.NoError(t, json.Unmarshal(data, &got))
		require.Len(t, got, 7)
		assert.Equal(t, map[string]string{"type": "PhotoApp::Action", "id": "edit"}, got[0].UID)
		assert.Equal(t, []map[string]string{{"type": "PhotoApp::Action", "id": "view"}}, got[0].Parents)

		last := got[len(got)-1]
		assert.Equal(t, "PhotoApp::User", last.UID["type"])
		assert.Equal(t, float64(3), last.Attrs["age"])
		assert.Equal(t, "red", last.Tags["team"])
		assert.Nil(t, got[0].Tags)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		data, err := yaml.Marshal(h)
		require.NoError(t, err)

		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(data, &got))
		require.Len(t, got, 7)
		last := got[len(got)-1]
		assert.Equal(t, `PhotoApp::User::"`+zeroUUID+`"`, last["uid"])
		assert.Equal(t, map[string]any{"age": "3"}, last["attrs"])
	})
}
