package navgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// snapshot is the on-disk form of a graph.
type snapshot struct {
	Threshold   float64 `json:"connectionThreshold"`
	SpawnOffset float64 `json:"spawnOffset"`
	Nodes       []Node  `json:"nodes"`
}

// Save writes the graph, including its edges, as JSON.
func (g *Graph) Save(w io.Writer) error {
	snap := snapshot{
		Threshold:   g.threshold,
		SpawnOffset: g.spawnOffset,
		Nodes:       g.Nodes(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	return nil
}

// SaveFile serializes the graph to a JSON file.
func (g *Graph) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := g.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	g.logger.Info("graph saved", "file", filename, "nodes", g.Len(), "edges", g.EdgeCount())
	return nil
}

// Load reads a graph written by Save. Edges are restored as stored rather
// than rediscovered; missing reverse links are added so the neighbor relation
// stays symmetric. opts are applied before the stored threshold, so the
// snapshot's threshold wins; a visibility oracle only matters for later
// AddNode and RebuildAll calls.
func Load(r io.Reader, opts ...Option) (*Graph, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}

	if snap.Threshold != 0 {
		opts = append(opts, WithThreshold(snap.Threshold))
	}
	if snap.SpawnOffset != 0 {
		opts = append(opts, WithSpawnOffset(snap.SpawnOffset))
	}
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}

	for _, sn := range snap.Nodes {
		if sn.ID < 0 {
			return nil, fmt.Errorf("%w: negative node id %d", ErrCorruptSnapshot, sn.ID)
		}
		if _, dup := g.nodes[sn.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node %d", ErrCorruptSnapshot, sn.ID)
		}
		n := &node{id: sn.ID, pos: sn.Position, exit: sn.Exit}
		n.entry = g.index.insert(n.id, n.pos)
		g.nodes[n.id] = n
		if n.id >= g.nextID {
			g.nextID = n.id + 1
		}
	}
	g.order = g.order[:0]
	for _, sn := range snap.Nodes {
		g.order = append(g.order, sn.ID)
	}
	slices.Sort(g.order)

	for _, sn := range snap.Nodes {
		n := g.nodes[sn.ID]
		for _, nb := range sn.Neighbors {
			if _, ok := g.nodes[nb]; !ok || nb == sn.ID {
				return nil, fmt.Errorf("%w: node %d links to %d", ErrCorruptSnapshot, sn.ID, nb)
			}
			if !n.hasNeighbor(nb) {
				n.neighbors = append(n.neighbors, nb)
			}
		}
	}
	for _, id := range g.order {
		for _, nb := range g.nodes[id].neighbors {
			if other := g.nodes[nb]; !other.hasNeighbor(id) {
				other.neighbors = append(other.neighbors, id)
			}
		}
	}
	directed := 0
	for _, n := range g.nodes {
		directed += len(n.neighbors)
	}
	g.edges = directed / 2
	edgeGauge.Set(float64(g.edges))
	return g, nil
}

// LoadFile deserializes a graph from a JSON file.
func LoadFile(filename string, opts ...Option) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	g, err := Load(f, opts...)
	if err != nil {
		return nil, err
	}
	g.logger.Info("graph loaded", "file", filename, "nodes", g.Len(), "edges", g.EdgeCount())
	return g, nil
}
