package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"go.etcd.io/bbolt"
)

var bucketEmbeddings = []byte("embeddings")

// EmbedCache is a bbolt-backed cache of computed embeddings keyed by
// (model, text). Re-ingesting a corpus mostly hits the cache, so only
// changed chunks pay for an embedding call.
type EmbedCache struct {
	db *bbolt.DB
}

func NewEmbedCache(path string) (*EmbedCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &EmbedCache{db: db}, nil
}

func cacheKey(model, text string) []byte {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return hash[:]
}

func (c *EmbedCache) Get(model, text string) ([]float32, bool) {
	var vec []float32

	_ = c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get(cacheKey(model, text))
		if data == nil || len(data)%4 != 0 {
			return nil
		}
		vec = decodeVector(data)
		return nil
	})

	return vec, vec != nil
}

func (c *EmbedCache) Put(model, text string, vec []float32) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).Put(cacheKey(model, text), encodeVector(vec))
	})
}

func (c *EmbedCache) Close() error {
	return c.db.Close()
}

func encodeVector(vec []float32) []byte {
	data := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return data
}

func decodeVector(data []byte) []float32 {
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
