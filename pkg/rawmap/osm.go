package rawmap

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/lintang-b-s/synthmap/pkg/datastructure"
	"github.com/lintang-b-s/synthmap/pkg/util"

	"github.com/paulmach/osm"
)

const (
	osmGenerator = "synthmap"
	osmVersion   = "0.6"
)

type osmLowering struct {
	o          *osm.OSM
	nodeByKey  map[[2]float64]osm.NodeID
	nextNodeID osm.NodeID
	timestamp  time.Time
}

func pointKey(c datastructure.Coordinate) [2]float64 {
	return [2]float64{util.RoundFloat(c.Lat, 7), util.RoundFloat(c.Lon, 7)}
}

// node returns the id of the node at c, creating an untagged one if no node sits there yet.
func (l *osmLowering) node(c datastructure.Coordinate) osm.NodeID {
	key := pointKey(c)
	if id, ok := l.nodeByKey[key]; ok {
		return id
	}
	id := l.nextNodeID
	l.nextNodeID++
	l.addNode(id, c, nil)
	return id
}

func (l *osmLowering) addNode(id osm.NodeID, c datastructure.Coordinate, tags osm.Tags) {
	l.o.Nodes = append(l.o.Nodes, &osm.Node{
		ID:        id,
		Lat:       c.Lat,
		Lon:       c.Lon,
		Visible:   true,
		Version:   1,
		Timestamp: l.timestamp,
		Tags:      tags,
	})
	l.nodeByKey[pointKey(c)] = id
}

func intersectionTags(i Intersection) osm.Tags {
	tags := osm.Tags{}
	switch i.Type {
	case TrafficSignal:
		tags = append(tags, osm.Tag{Key: "highway", Value: "traffic_signals"})
	case StopSign:
		tags = append(tags, osm.Tag{Key: "highway", Value: "stop"})
	case Border:
		tags = append(tags, osm.Tag{Key: "synthetic_border", Value: "yes"})
	}
	if i.Label != "" {
		tags = append(tags, osm.Tag{Key: "name", Value: i.Label})
	}
	return tags
}

// ToOSM lowers m into an OSM document. Intersections become tagged nodes, roads and buildings
// become ways keeping their way ids. Points shared between records are emitted once; untagged node
// ids start after the largest intersection id.
func (m *Map) ToOSM() *osm.OSM {
	l := &osmLowering{
		o: &osm.OSM{
			Version:   osmVersion,
			Generator: osmGenerator,
		},
		nodeByKey: make(map[[2]float64]osm.NodeID),
		timestamp: time.Unix(0, 0).UTC(),
	}

	if b, err := m.GPSBounds(); err == nil {
		l.o.Bounds = &osm.Bounds{
			MinLat: b.MinLat,
			MaxLat: b.MaxLat,
			MinLon: b.MinLon,
			MaxLon: b.MaxLon,
		}
	}

	maxID := int64(0)
	for _, i := range m.Intersections {
		if i.ID > maxID {
			maxID = i.ID
		}
	}
	for _, i := range m.Intersections {
		l.addNode(osm.NodeID(i.ID+1), i.Point, intersectionTags(i))
	}
	l.nextNodeID = osm.NodeID(maxID + 2)

	for _, r := range m.Roads {
		nodes := make(osm.WayNodes, 0, len(r.Points))
		for _, p := range r.Points {
			nodes = append(nodes, osm.WayNode{ID: l.node(p), Lat: p.Lat, Lon: p.Lon})
		}
		tags := append(osm.Tags{}, r.Tags...)
		if !tags.HasTag("highway") {
			tags = append(tags, osm.Tag{Key: "highway", Value: "residential"})
		}
		if r.ParkingLaneFwd || r.ParkingLaneBack {
			tags = append(tags, osm.Tag{Key: "parking:lane:both", Value: parkingValue(r)})
		}
		l.o.Ways = append(l.o.Ways, &osm.Way{
			ID:        osm.WayID(r.WayID),
			Visible:   true,
			Version:   1,
			Timestamp: l.timestamp,
			Nodes:     nodes,
			Tags:      tags,
		})
	}

	for _, b := range m.Buildings {
		if len(b.Points) == 0 {
			continue
		}
		nodes := make(osm.WayNodes, 0, len(b.Points)+1)
		for _, p := range b.Points {
			nodes = append(nodes, osm.WayNode{ID: l.node(p), Lat: p.Lat, Lon: p.Lon})
		}
		if nodes[0].ID != nodes[len(nodes)-1].ID {
			nodes = append(nodes, nodes[0])
		}
		tags := append(osm.Tags{}, b.Tags...)
		if !tags.HasTag("building") {
			tags = append(tags, osm.Tag{Key: "building", Value: "yes"})
		}
		l.o.Ways = append(l.o.Ways, &osm.Way{
			ID:        osm.WayID(b.WayID),
			Visible:   true,
			Version:   1,
			Timestamp: l.timestamp,
			Nodes:     nodes,
			Tags:      tags,
		})
	}

	return l.o
}

func parkingValue(r Road) string {
	switch {
	case r.ParkingLaneFwd && r.ParkingLaneBack:
		return "parallel"
	case r.ParkingLaneFwd:
		return "parallel_forward"
	default:
		return "parallel_backward"
	}
}

// WriteOSM writes the OSM XML lowering of m to w.
func (m *Map) WriteOSM(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(m.ToOSM()); err != nil {
		return err
	}
	return enc.Flush()
}
