package analytics

import (
	"context"
	"strings"

	"github.com/medconnect/graphd/internal/graph"
)

// RankedPerson is one person with analytics properties attached.
type RankedPerson struct {
	ID          string
	Name        string
	PageRank    float64
	Betweenness float64
	CommunityID int64
	Specialties []string
}

// CommunityMember is a sampled member of a community.
type CommunityMember struct {
	ID       string
	Name     string
	PageRank float64
}

// Community is one detected cluster with a member sample.
type Community struct {
	ID          int64
	MemberCount int64
	TopMembers  []CommunityMember
}

// SimilarPerson is one similarity neighbor.
type SimilarPerson struct {
	ID          string
	Name        string
	Similarity  float64
	Specialties []string
}

// SearchHit is one full-text search result.
type SearchHit struct {
	ID    string
	Name  string
	City  string
	Type  string
	Score float64
}

// Queries reads the properties the engines write. It never computes anything
// itself.
type Queries struct {
	client graph.Client
}

// NewQueries creates the analytics query surface.
func NewQueries(client graph.Client) *Queries {
	return &Queries{client: client}
}

// TopInfluential returns the highest-ranked people by pageRank.
func (q *Queries) TopInfluential(ctx context.Context, limit int) ([]RankedPerson, error) {
	records, err := q.client.Read(ctx, `MATCH (p:Person)
WHERE p.pageRank IS NOT NULL
OPTIONAL MATCH (p)-[:SPECIALIZES_IN]->(s:Specialty)
WITH p, collect(s.name) AS specialties
ORDER BY p.pageRank DESC
LIMIT toInteger($limit)
RETURN p.extId AS id, p.fullName AS name, p.pageRank AS pageRank,
       p.betweenness AS betweenness, p.communityId AS communityId, specialties`,
		map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	return rankedFromRecords(records), nil
}

// TopBridges returns the people most often on shortest paths between others.
func (q *Queries) TopBridges(ctx context.Context, limit int) ([]RankedPerson, error) {
	records, err := q.client.Read(ctx, `MATCH (p:Person)
WHERE p.betweenness IS NOT NULL AND p.betweenness > 0
WITH p
ORDER BY p.betweenness DESC
LIMIT toInteger($limit)
RETURN p.extId AS id, p.fullName AS name, p.betweenness AS betweenness,
       p.pageRank AS pageRank, p.communityId AS communityId`,
		map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	return rankedFromRecords(records), nil
}

// Communities returns clusters with at least three members and up to five
// sampled members each, largest first.
func (q *Queries) Communities(ctx context.Context) ([]Community, error) {
	records, err := q.client.Read(ctx, `MATCH (p:Person)
WHERE p.communityId IS NOT NULL
WITH p.communityId AS communityId, count(p) AS memberCount,
     collect({id: p.extId, name: p.fullName, pageRank: p.pageRank})[0..5] AS topMembers
WHERE memberCount >= 3
ORDER BY memberCount DESC
RETURN communityId, memberCount, topMembers`, nil)
	if err != nil {
		return nil, err
	}

	out := make([]Community, 0, len(records))
	for _, rec := range records {
		c := Community{
			ID:          graph.AsInt64(rec["communityId"]),
			MemberCount: graph.AsInt64(rec["memberCount"]),
		}
		if members, ok := rec["topMembers"].([]any); ok {
			for _, m := range members {
				if fields, ok := m.(map[string]any); ok {
					c.TopMembers = append(c.TopMembers, CommunityMember{
						ID:       graph.AsString(fields["id"]),
						Name:     graph.AsString(fields["name"]),
						PageRank: graph.AsFloat64(fields["pageRank"]),
					})
				}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// SimilarTo returns people linked to the given person by SIMILAR_TO edges,
// strongest first.
func (q *Queries) SimilarTo(ctx context.Context, personID string, limit int) ([]SimilarPerson, error) {
	records, err := q.client.Read(ctx, `MATCH (p:Person {extId: $personId})-[s:SIMILAR_TO]->(similar:Person)
OPTIONAL MATCH (similar)-[:SPECIALIZES_IN]->(spec:Specialty)
WITH similar, s.score AS similarity, collect(spec.name) AS specialties
ORDER BY similarity DESC
LIMIT toInteger($limit)
RETURN similar.extId AS id, similar.fullName AS name, similarity, specialties`,
		map[string]any{"personId": personID, "limit": limit})
	if err != nil {
		return nil, err
	}

	out := make([]SimilarPerson, 0, len(records))
	for _, rec := range records {
		out = append(out, SimilarPerson{
			ID:          graph.AsString(rec["id"]),
			Name:        graph.AsString(rec["name"]),
			Similarity:  graph.AsFloat64(rec["similarity"]),
			Specialties: stringList(rec["specialties"]),
		})
	}
	return out, nil
}

// CommunityPeers returns the person's community members, best ranked first.
func (q *Queries) CommunityPeers(ctx context.Context, personID string, limit int) ([]RankedPerson, error) {
	records, err := q.client.Read(ctx, `MATCH (me:Person {extId: $personId})
WHERE me.communityId IS NOT NULL
MATCH (peer:Person {communityId: me.communityId})
WHERE peer.extId <> $personId
OPTIONAL MATCH (peer)-[:SPECIALIZES_IN]->(s:Specialty)
WITH peer, collect(s.name) AS specialties
ORDER BY peer.pageRank DESC
LIMIT toInteger($limit)
RETURN peer.extId AS id, peer.fullName AS name, peer.pageRank AS pageRank,
       peer.communityId AS communityId, specialties`,
		map[string]any{"personId": personID, "limit": limit})
	if err != nil {
		return nil, err
	}
	return rankedFromRecords(records), nil
}

// SearchPeopleByName fuzzy-searches the person full-text index.
func (q *Queries) SearchPeopleByName(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	records, err := q.client.Read(ctx, `CALL db.index.fulltext.queryNodes('person_fulltext', $query)
YIELD node, score
OPTIONAL MATCH (node)-[:SPECIALIZES_IN]->(s:Specialty)
WITH node, score, collect(s.name) AS specialties
LIMIT toInteger($limit)
RETURN node.extId AS id, node.fullName AS name, node.city AS city, score`,
		map[string]any{"query": FuzzyQuery(query), "limit": limit})
	if err != nil {
		return nil, err
	}
	return hitsFromRecords(records), nil
}

// SearchOrganizationsByName fuzzy-searches the organization full-text index.
func (q *Queries) SearchOrganizationsByName(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	records, err := q.client.Read(ctx, `CALL db.index.fulltext.queryNodes('organization_fulltext', $query)
YIELD node, score
LIMIT toInteger($limit)
RETURN node.extId AS id, node.name AS name, node.city AS city,
       node.type AS type, score`,
		map[string]any{"query": FuzzyQuery(query), "limit": limit})
	if err != nil {
		return nil, err
	}
	return hitsFromRecords(records), nil
}

// FuzzyQuery turns free text into a Lucene query: every word becomes a fuzzy
// term and all terms must match.
func FuzzyQuery(query string) string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, w+"~")
	}
	return strings.Join(terms, " AND ")
}

func rankedFromRecords(records []graph.Record) []RankedPerson {
	out := make([]RankedPerson, 0, len(records))
	for _, rec := range records {
		out = append(out, RankedPerson{
			ID:          graph.AsString(rec["id"]),
			Name:        graph.AsString(rec["name"]),
			PageRank:    graph.AsFloat64(rec["pageRank"]),
			Betweenness: graph.AsFloat64(rec["betweenness"]),
			CommunityID: graph.AsInt64(rec["communityId"]),
			Specialties: stringList(rec["specialties"]),
		})
	}
	return out
}

func hitsFromRecords(records []graph.Record) []SearchHit {
	out := make([]SearchHit, 0, len(records))
	for _, rec := range records {
		out = append(out, SearchHit{
			ID:    graph.AsString(rec["id"]),
			Name:  graph.AsString(rec["name"]),
			City:  graph.AsString(rec["city"]),
			Type:  graph.AsString(rec["type"]),
			Score: graph.AsFloat64(rec["score"]),
		})
	}
	return out
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, graph.AsString(item))
	}
	return out
}
