package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medconnect/graphd/internal/graph"
)

func TestFuzzyQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single word", "cardiology", "cardiology~"},
		{"two words", "ana souza", "ana~ AND souza~"},
		{"extra whitespace", "  ana   souza ", "ana~ AND souza~"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuzzyQuery(tt.input))
		})
	}
}

func TestTopInfluential_MapsRecords(t *testing.T) {
	mock := graph.NewMockClient()
	mock.EnqueueReadResult([]graph.Record{
		{
			"id": "p1", "name": "Ana Souza", "pageRank": 3.2,
			"betweenness": 120.0, "communityId": int64(7),
			"specialties": []any{"Cardiology", "Internal Medicine"},
		},
		{
			"id": "p2", "name": "Bruno Lima", "pageRank": 1.1,
			"betweenness": nil, "communityId": int64(7),
			"specialties": []any{},
		},
	})

	people, err := NewQueries(mock).TopInfluential(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, "p1", people[0].ID)
	assert.Equal(t, 3.2, people[0].PageRank)
	assert.Equal(t, int64(7), people[0].CommunityID)
	assert.Equal(t, []string{"Cardiology", "Internal Medicine"}, people[0].Specialties)
	// Missing betweenness reads as zero, not an error.
	assert.Zero(t, people[1].Betweenness)

	calls := mock.CallsFor("Read")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "p.pageRank IS NOT NULL")
	assert.Equal(t, 20, calls[0].Params["limit"])
}

func TestCommunities_MapsNestedMembers(t *testing.T) {
	mock := graph.NewMockClient()
	mock.EnqueueReadResult([]graph.Record{
		{
			"communityId": int64(4),
			"memberCount": int64(12),
			"topMembers": []any{
				map[string]any{"id": "p1", "name": "Ana Souza", "pageRank": 2.5},
				map[string]any{"id": "p2", "name": "Bruno Lima", "pageRank": 1.9},
			},
		},
	})

	communities, err := NewQueries(mock).Communities(context.Background())
	require.NoError(t, err)
	require.Len(t, communities, 1)
	assert.Equal(t, int64(4), communities[0].ID)
	assert.Equal(t, int64(12), communities[0].MemberCount)
	require.Len(t, communities[0].TopMembers, 2)
	assert.Equal(t, "Ana Souza", communities[0].TopMembers[0].Name)
}

func TestSearchPeopleByName_SendsFuzzyLucene(t *testing.T) {
	mock := graph.NewMockClient()
	_, err := NewQueries(mock).SearchPeopleByName(context.Background(), "ana souza", 10)
	require.NoError(t, err)

	calls := mock.CallsFor("Read")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "person_fulltext")
	assert.Equal(t, "ana~ AND souza~", calls[0].Params["query"])
}

func TestSimilarTo_OrdersByScore(t *testing.T) {
	mock := graph.NewMockClient()
	mock.EnqueueReadResult([]graph.Record{
		{"id": "p2", "name": "Bruno Lima", "similarity": 0.8, "specialties": []any{"Cardiology"}},
		{"id": "p3", "name": "Carla Dias", "similarity": 0.4, "specialties": nil},
	})

	similar, err := NewQueries(mock).SimilarTo(context.Background(), "p1", 10)
	require.NoError(t, err)
	require.Len(t, similar, 2)
	assert.Equal(t, 0.8, similar[0].Similarity)
	assert.Empty(t, similar[1].Specialties)
}
