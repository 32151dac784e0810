package schema_test

import (
	"os"
	"testing"

	"github.com/cedar-policy/cedar-go/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/schema"
)

func loadPhotoApp(t *testing.T) *schema.Schema {
	t.Helper()
	data, err := os.ReadFile("testdata/photoapp.json")
	require.NoError(t, err)
	var s schema.Schema
	require.NoError(t, s.UnmarshalJSON(data))
	require.NoError(t, s.Validate())
	return &s
}

func TestUnmarshalJSON(t *testing.T) {
	t.Parallel()
	s := loadPhotoApp(t)

	assert.Equal(t, types.Path("PhotoApp"), s.Namespace)
	assert.Len(t, s.Entities, 3)
	assert.Equal(t, []types.String{"red", "green"}, s.Enums["Color"].Values)
	assert.Equal(t, []types.EntityType{"Group"}, s.Entities["User"].MemberOf)
	assert.Equal(t, []types.String{"view"}, s.Actions["edit"].MemberOf)

	user := s.Entities["User"]
	assert.True(t, user.Shape.Attributes["manager"].Optional)
	assert.Equal(t, schema.EntityOrCommon("Address"), user.Shape.Attributes["address"].Type)
	assert.Equal(t, schema.String(), user.Tags)

	photo := s.Entities["Photo"]
	assert.Equal(t, schema.Bool(), photo.Shape.Attributes["private"].Type)
	assert.Equal(t, schema.Ref("Labels"), photo.Shape.Attributes["labels"].Type)
	assert.Equal(t, schema.Datetime(), photo.Shape.Attributes["created"].Type)

	ctx, ok := s.Actions["view"].AppliesTo.Context.(schema.RecordType)
	require.True(t, ok)
	assert.True(t, ctx.Attributes["extra"].Type.(schema.RecordType).AdditionalAttributes)
}

func TestUnmarshalJSONErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"two namespaces", `{"A": {"entityTypes": {}, "actions": {}}, "B": {"entityTypes": {}, "actions": {}}}`, schema.ErrNamespaceCount},
		{"no namespace", `{}`, schema.ErrNamespaceCount},
		{"set without element", `{"": {"entityTypes": {"E": {"tags": {"type": "Set"}}}, "actions": {}}}`, schema.ErrUnknownType},
		{"shape not a record", `{"": {"entityTypes": {"E": {"shape": {"type": "Long"}}}, "actions": {}}}`, schema.ErrShapeNotRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s schema.Schema
			require.ErrorIs(t, s.UnmarshalJSON([]byte(tt.in)), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   *schema.Schema
		want error
	}{
		{
			"cycle",
			&schema.Schema{CommonTypes: schema.CommonTypes{
				"A": schema.Set(schema.Ref("B")),
				"B": schema.Record(schema.Attributes{"a": {Type: schema.EntityOrCommon("A")}}),
			}},
			schema.ErrCycle,
		},
		{
			"undefined common type",
			&schema.Schema{CommonTypes: schema.CommonTypes{"A": schema.Ref("Missing")}},
			schema.ErrUndefinedType,
		},
		{
			"undefined entity",
			&schema.Schema{Entities: schema.Entities{"E": {MemberOf: []types.EntityType{"Nope"}}}},
			schema.ErrUndefinedType,
		},
		{
			"undefined action group",
			&schema.Schema{Actions: schema.Actions{"a": {MemberOf: []types.String{"b"}}}},
			schema.ErrUndefinedType,
		},
		{
			"context not a record",
			&schema.Schema{
				Entities: schema.Entities{"E": {}},
				Actions: schema.Actions{"a": {AppliesTo: &schema.AppliesTo{
					Principals: []types.EntityType{"E"},
					Context:    schema.Long(),
				}}},
			},
			schema.ErrUnknownType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.in.Validate(), tt.want)
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	s := loadPhotoApp(t)

	addr, ok := s.Resolve(schema.EntityOrCommon("Address")).(schema.RecordType)
	require.True(t, ok)
	assert.Equal(t, []types.String{"street", "zip"}, addr.Names())

	assert.Equal(t, schema.EntityType("PhotoApp::User"), s.Resolve(schema.EntityOrCommon("User")))
	assert.Equal(t, schema.EntityType("PhotoApp::User"), s.Resolve(schema.EntityType("User")))
	assert.Equal(t, schema.String(), s.Resolve(schema.EntityOrCommon("String")))
	assert.Equal(t, schema.Set(schema.String()), s.Resolve(schema.Ref("PhotoApp::Labels")))
	assert.Equal(t, schema.Long(), s.Resolve(schema.Long()))

	defer func() {
		p := recover()
		require.NotNil(t, p)
		err, ok := p.(error)
		require.True(t, ok)
		assert.True(t, errors.HasAssertionFailure(err))
	}()
	s.Resolve(schema.Ref("Missing"))
}

func TestQualify(t *testing.T) {
	t.Parallel()
	s := &schema.Schema{Namespace: "NS"}
	assert.Equal(t, types.EntityType("NS::User"), s.Qualify("User"))
	assert.Equal(t, types.EntityType("Other::User"), s.Qualify("Other::User"))
	assert.Equal(t, types.NewEntityUID("NS::Action", "view"), s.ActionUID("view"))

	empty := &schema.Schema{}
	assert.Equal(t, types.EntityType("User"), empty.Qualify("User"))
}

func TestIndex(t *testing.T) {
	t.Parallel()
	s := loadPhotoApp(t)
	ix := schema.NewIndex(s)

	assert.Equal(t, []types.EntityType{"PhotoApp::Color", "PhotoApp::Group", "PhotoApp::Photo", "PhotoApp::User"}, ix.EntityTypes)
	assert.Equal(t, []types.EntityType{"PhotoApp::Group", "PhotoApp::User"}, ix.PrincipalTypes)
	assert.Equal(t, []types.EntityType{"PhotoApp::Photo"}, ix.ResourceTypes)
	assert.Equal(t, []types.String{"edit", "view"}, ix.ActionIDs)
	assert.Len(t, ix.Attrs, 12)

	assert.Equal(t, []types.String{"address", "age", "manager", "name"}, s.AttrNames("PhotoApp::User"))
	assert.Empty(t, s.AttrNames("Color"))
	assert.Equal(t, []types.String{"red", "green"}, s.EnumChoices("PhotoApp::Color"))
	assert.Nil(t, s.EnumChoices("User"))

	tests := []struct {
		name     string
		target   schema.IsType
		wantType types.EntityType
		wantAttr types.String
	}{
		{"long", schema.Long(), "PhotoApp::User", "age"},
		{"bool", schema.Bool(), "PhotoApp::Photo", "private"},
		{"set through common type", schema.Ref("Labels"), "PhotoApp::Photo", "labels"},
		{"set literal type", schema.Set(schema.String()), "PhotoApp::Photo", "labels"},
		{"extension", schema.Datetime(), "PhotoApp::Photo", "created"},
		{"entity", schema.EntityType("User"), "PhotoApp::Photo", "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			et, attr, err := ix.ArbitraryAttrForSchemaType(tt.target, arbitrary.New([]byte{0}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, et)
			assert.Equal(t, tt.wantAttr, attr)
		})
	}

	_, _, err := ix.ArbitraryAttrForSchemaType(schema.IPAddr(), arbitrary.New(nil))
	require.ErrorIs(t, err, arbitrary.ErrEmptyChoose, "context attributes belong to no entity")

	et, err := ix.ArbitraryEntityTypeWithTagSchemaType(schema.String(), arbitrary.New(nil))
	require.NoError(t, err)
	assert.Equal(t, types.EntityType("PhotoApp::User"), et)

	_, err = ix.ArbitraryEntityTypeWithTagSchemaType(schema.Long(), arbitrary.New(nil))
	require.ErrorIs(t, err, arbitrary.ErrEmptyChoose)

	tag, ok := ix.TagType("User")
	require.True(t, ok)
	assert.Equal(t, schema.String(), tag)
}
