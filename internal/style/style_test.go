// ABOUTME: Tests for the layer expressions, evaluator and cluster reducer
// ABOUTME: Checks that expressions resolve to keys present in the icon catalog

package style

import (
	"encoding/json"
	"testing"

	"github.com/harper/forage/internal/icons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterIconImage_MatchesCatalog(t *testing.T) {
	cat, err := icons.BuildCatalog()
	require.NoError(t, err)

	for _, count := range []int{1, 2, 5, 49, 50, 199, 200, 1000} {
		for inSeason := 0; inSeason <= count; inSeason += max(1, count/7) {
			props := map[string]any{PropPointCount: count, PropInSeasonSum: inSeason}
			key, err := EvalString(ClusterIconImage(), props)
			require.NoError(t, err)

			assert.Equal(t, icons.ClusterKeyFor(inSeason, count), key, "%d/%d", inSeason, count)
			_, ok := cat.Lookup(key)
			assert.True(t, ok, "key %q missing from catalog", key)
		}
	}
}

func TestClusterCountText(t *testing.T) {
	text, err := EvalString(ClusterCountText(), map[string]any{PropPointCount: 12.0, PropInSeasonSum: 3})
	require.NoError(t, err)
	assert.Equal(t, "3/12", text)
}

func TestPointIconImage(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"unverified wins", map[string]any{PropUnverified: true, PropIconKey: "orange", PropInSeason: true}, icons.MarkerUnverified},
		{"species in season", map[string]any{PropUnverified: false, PropIconKey: "orange", PropInSeason: true}, "fruit-inseason-orange"},
		{"species out of season", map[string]any{PropUnverified: false, PropIconKey: "orange", PropInSeason: false}, "fruit-orange"},
		{"default in season", map[string]any{PropUnverified: false, PropInSeason: true}, icons.MarkerDefaultInSeason},
		{"default", map[string]any{PropUnverified: false, PropInSeason: false}, icons.MarkerDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalString(PointIconImage(), tt.props)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReduce_InSeasonSum(t *testing.T) {
	members := []map[string]any{
		{PropInSeasonNumeric: 1},
		{PropInSeasonNumeric: 0},
		{PropInSeasonNumeric: 1},
		{PropInSeasonNumeric: 0},
		{PropInSeasonNumeric: 0},
	}
	props, err := Reduce(ClusterProperties(), members)
	require.NoError(t, err)
	assert.Equal(t, 2.0, props[PropInSeasonSum])
	assert.Equal(t, 5.0, props[PropPointCount])

	key, err := EvalString(ClusterIconImage(), props)
	require.NoError(t, err)
	assert.Equal(t, "cluster-40-40", key)
}

func TestReduce_BadReducer(t *testing.T) {
	_, err := Reduce(map[string]Expr{"x": "+"}, nil)
	assert.ErrorIs(t, err, ErrBadExpression)
}

func TestEval_Step(t *testing.T) {
	expr := []any{"step", []any{"get", "n"}, "a", 10, "b", 20, "c"}
	for n, want := range map[float64]string{0: "a", 9.9: "a", 10: "b", 19: "b", 20: "c", 500: "c"} {
		got, err := EvalString(expr, map[string]any{"n": n})
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%v", n)
	}
}

func TestEval_EqualityOnLists(t *testing.T) {
	props := map[string]any{"type_ids": []int{3, 52}, "other": []int{3}}

	got, err := Eval([]any{"==", []any{"get", "type_ids"}, []any{"get", "type_ids"}}, props)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = Eval([]any{"!=", []any{"get", "type_ids"}, []any{"get", "other"}}, props)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = Eval([]any{"==", []any{"get", "point_count"}, 4}, map[string]any{"point_count": 4})
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestEval_Errors(t *testing.T) {
	_, err := Eval([]any{"nope", 1}, nil)
	assert.ErrorIs(t, err, ErrBadExpression)

	_, err = Eval([]any{"round", []any{"get", "missing"}}, nil)
	assert.ErrorIs(t, err, ErrBadExpression)

	_, err = Eval([]any{}, nil)
	assert.ErrorIs(t, err, ErrBadExpression)

	_, err = EvalString([]any{"+", 1, 2}, nil)
	assert.ErrorIs(t, err, ErrBadExpression)
}

func TestLayers_ReadyGate(t *testing.T) {
	ids := func(ls []Layer) []string {
		var out []string
		for _, l := range ls {
			out = append(out, l.ID)
		}
		return out
	}
	assert.Equal(t, []string{LayerClusters, LayerClusterCount, LayerPointFallback}, ids(Layers(false)))
	assert.Equal(t, []string{LayerClusters, LayerClusterCount, LayerPoint}, ids(Layers(true)))
	assert.Equal(t, []string{LayerClusters, LayerPointFallback}, InteractiveLayers(false))
	assert.Equal(t, []string{LayerClusters, LayerPoint}, InteractiveLayers(true))
}

func TestLayers_JSONShape(t *testing.T) {
	data, err := json.Marshal(Layers(true)[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "clusters",
		"type": "symbol",
		"source": "locations",
		"filter": ["has", "point_count"],
		"layout": {
			"icon-image": ["concat", "cluster-",
				["step", ["get", "point_count"], "40", 50, "60", 200, "80"],
				"-",
				["*", 5, ["round", ["/", ["*", 100, ["/", ["get", "inSeasonSum"], ["get", "point_count"]]], 5]]]],
			"icon-size": 1,
			"icon-allow-overlap": true
		}
	}`, string(data))

	src, err := json.Marshal(LocationsSource(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"geojson","cluster":true,"clusterMaxZoom":14,"clusterRadius":50,
		"clusterProperties":{"inSeasonSum":["+",["get","inSeasonNumeric"]]}}`, string(src))
}
