package kv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lintang-b-s/synthmap/pkg/geo"
	"github.com/lintang-b-s/synthmap/pkg/logger"
	"github.com/lintang-b-s/synthmap/pkg/rawmap"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

var (
	ErrMapNotFound          = errors.New("raw map not found")
	ErrNoIntersectionsFound = errors.New("no intersections found")
)

const (
	h3Resolution = 9
	maxRingLevel = 10
	batchSize    = 1000

	mapPrefix  = "map:"
	cellPrefix = "h3:"
)

func mapKey(name string) []byte {
	return []byte(mapPrefix + name)
}

func cellKeyPrefix(name string) string {
	return cellPrefix + name + ":"
}

func cellKey(name string, cell h3.Cell) []byte {
	return []byte(cellKeyPrefix(name) + cell.String())
}

// MapStore keeps exported raw maps in badger, together with an H3 index of their intersections.
type MapStore struct {
	db *badger.DB
}

func NewMapStore(db *badger.DB) *MapStore {
	return &MapStore{db}
}

// OpenDB opens badger at dir. An empty dir opens an in-memory database.
func OpenDB(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	return badger.Open(opts)
}

// PutRawMap stores raw under its name, replacing any previous version and its cell index.
func (k *MapStore) PutRawMap(ctx context.Context, raw *rawmap.Map) error {
	lg := logger.FromContext(ctx)
	if raw.Name == "" {
		return rawmap.ErrEmptyName
	}

	if err := k.deleteCells(ctx, raw.Name); err != nil {
		return err
	}

	lg.Info("creating & saving h3 indexed intersections to key-value db...", "map", raw.Name)
	cells := make(map[h3.Cell][]KVIntersection)
	for _, i := range raw.Intersections {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		cell := h3.LatLngToCell(h3.NewLatLng(i.Point.Lat, i.Point.Lon), h3Resolution)
		cells[cell] = append(cells[cell], newKVIntersection(i))
	}

	batches := make([]batchData, 0, batchSize)
	for cell, value := range cells {
		batches = append(batches, batchData{
			key:   cellKey(raw.Name, cell),
			value: value,
		})
		if len(batches) == batchSize {
			if err := k.saveBatch(ctx, batches); err != nil {
				return err
			}
			batches = make([]batchData, 0, batchSize)
		}
	}
	if len(batches) > 0 {
		if err := k.saveBatch(ctx, batches); err != nil {
			return err
		}
	}

	val, err := encodeRawMap(raw)
	if err != nil {
		return err
	}
	err = k.db.Update(func(txn *badger.Txn) error {
		return txn.Set(mapKey(raw.Name), val)
	})
	if err != nil {
		return fmt.Errorf("saving raw map %q: %w", raw.Name, err)
	}

	lg.Info("creating & saving h3 indexed intersections to key-value db done", "map", raw.Name, "cells", len(cells))
	return nil
}

type batchData struct {
	key   []byte
	value []KVIntersection
}

func (k *MapStore) saveBatch(ctx context.Context, batchData []batchData) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, data := range batchData {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		val, err := encodeIntersections(data.value)
		if err != nil {
			return err
		}
		if err := batch.Set(data.key, val); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		logger.FromContext(ctx).Error("error saving intersections", "err", err)
		return err
	}
	logger.FromContext(ctx).Debug("saved h3 cells", "count", len(batchData))
	return nil
}

func (k *MapStore) keysWithPrefix(prefix string) ([][]byte, error) {
	keys := make([][]byte, 0)
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (k *MapStore) deleteCells(ctx context.Context, name string) error {
	keys, err := k.keysWithPrefix(cellKeyPrefix(name))
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	batch := k.db.NewWriteBatch()
	defer batch.Cancel()
	for _, key := range keys {
		if err := batch.Delete(key); err != nil {
			return err
		}
	}
	if err := batch.Flush(); err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("dropped old h3 cells", "map", name, "count", len(keys))
	return nil
}

func (k *MapStore) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (k *MapStore) GetRawMap(name string) (*rawmap.Map, error) {
	val, err := k.get(mapKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return loadRawMap(val)
}

func (k *MapStore) DeleteRawMap(ctx context.Context, name string) error {
	if _, err := k.get(mapKey(name)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", ErrMapNotFound, name)
		}
		return err
	}
	if err := k.deleteCells(ctx, name); err != nil {
		return err
	}
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(mapKey(name))
	})
}

// ListMaps returns the stored map names in ascending order.
func (k *MapStore) ListMaps() ([]string, error) {
	keys, err := k.keysWithPrefix(mapPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(string(key), mapPrefix))
	}
	sort.Strings(names)
	return names, nil
}

type NearbyIntersection struct {
	KVIntersection
	DistanceMeters float64
}

func (k *MapStore) cellIntersections(name string, cell h3.Cell) ([]KVIntersection, error) {
	val, err := k.get(cellKey(name, cell))
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	return loadIntersections(val)
}

// NearestIntersections returns the intersections of map name sharing the H3 cell of (lat, lon),
// widening to the neighbouring rings of cells until something is found. Results are sorted by
// distance to the query point.
func (k *MapStore) NearestIntersections(name string, lat, lon float64) ([]NearbyIntersection, error) {
	if _, err := k.get(mapKey(name)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrMapNotFound, name)
		}
		return nil, err
	}

	found := make([]KVIntersection, 0)
	for _, pass := range searchPasses(lat, lon) {
		for _, cell := range pass {
			is, err := k.cellIntersections(name, cell)
			if err != nil {
				return nil, err
			}
			found = append(found, is...)
		}
		if len(found) > 0 {
			break
		}
	}

	if len(found) == 0 {
		return nil, ErrNoIntersectionsFound
	}

	seen := make(map[int64]struct{}, len(found))
	out := make([]NearbyIntersection, 0, len(found))
	for _, i := range found {
		if _, ok := seen[i.ID]; ok {
			continue
		}
		seen[i.ID] = struct{}{}
		out = append(out, NearbyIntersection{
			KVIntersection: i,
			DistanceMeters: geo.HaversineMeters(lat, lon, i.Lat, i.Lon),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].DistanceMeters != out[b].DistanceMeters {
			return out[a].DistanceMeters < out[b].DistanceMeters
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

// searchPasses lists the cells around (lat, lon) in the order NearestIntersections reads them: the
// home cell, the rest of the 1 km disk, then one ring per level up to maxRingLevel. No cell is
// listed twice.
func searchPasses(lat, lon float64) [][]h3.Cell {
	home := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)
	seen := map[h3.Cell]struct{}{home: {}}
	unseen := func(cells []h3.Cell) []h3.Cell {
		out := make([]h3.Cell, 0, len(cells))
		for _, c := range cells {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
		return out
	}

	areaRadius := kRingRadius(home, 1)
	passes := [][]h3.Cell{{home}, unseen(h3.GridDisk(home, areaRadius))}
	for lev := areaRadius + 1; lev <= maxRingLevel; lev++ {
		passes = append(passes, unseen(h3.GridDisk(home, lev)))
	}
	return passes
}

// kRingRadius is the smallest grid disk radius around origin whose area covers a circle of
// searchRadiusKm.
func kRingRadius(origin h3.Cell, searchRadiusKm float64) int {
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea

	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}
	return radius
}

func (k *MapStore) Close() error {
	return k.db.Close()
}
