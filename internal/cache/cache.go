package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/lfarias/imc-wellness/internal/bmi"
	"github.com/lfarias/imc-wellness/internal/gemini"
)

// Cache interface defines cache operations
type Cache interface {
	Get(ctx context.Context, key string) (*TipEntry, error)
	Set(ctx context.Context, key string, entry *TipEntry) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// TipEntry represents one cached wellness tip, keyed by classification.
type TipEntry struct {
	Key            string                  `json:"key"`
	Classification string                  `json:"classification"`
	Tip            gemini.GenerateResponse `json:"tip"`
	CreatedAt      time.Time               `json:"created_at"`
	ExpiresAt      time.Time               `json:"expires_at"`
	AccessedAt     time.Time               `json:"accessed_at"`
	AccessCount    int                     `json:"access_count"`
}

// Stats represents cache statistics
type Stats struct {
	TotalEntries int           `json:"total_entries"`
	HitCount     int64         `json:"hit_count"`
	MissCount    int64         `json:"miss_count"`
	HitRate      float64       `json:"hit_rate"`
	MemoryUsage  int64         `json:"memory_usage_bytes"`
	OldestEntry  time.Time     `json:"oldest_entry"`
	AverageAge   time.Duration `json:"average_age"`
}

// Common cache errors
var ErrCacheMiss = fmt.Errorf("cache miss")

// MemoryCache implements in-memory cache
type MemoryCache struct {
	entries     map[string]*TipEntry
	mutex       sync.RWMutex
	duration    time.Duration
	hitCount    int64
	missCount   int64
	stopCleanup chan struct{}
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(duration time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]*TipEntry),
		duration:    duration,
		stopCleanup: make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Get retrieves an entry from cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*TipEntry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.missCount++
		return nil, ErrCacheMiss
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		c.missCount++
		return nil, ErrCacheMiss
	}

	entry.AccessedAt = time.Now()
	entry.AccessCount++
	c.hitCount++

	return entry, nil
}

// Set stores an entry in cache
func (c *MemoryCache) Set(ctx context.Context, key string, entry *TipEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	entry.Key = key
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(c.duration)
	entry.AccessedAt = now
	entry.AccessCount = 0

	c.entries[key] = entry
	return nil
}

// Delete removes an entry from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, key)
	return nil
}

// Exists checks if a non-expired entry exists in cache
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return false, nil
	}
	return !time.Now().After(entry.ExpiresAt), nil
}

// Clear removes all entries from cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*TipEntry)
	return nil
}

// GetStats returns cache statistics
func (c *MemoryCache) GetStats(ctx context.Context) (*Stats, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := &Stats{
		TotalEntries: len(c.entries),
		HitCount:     c.hitCount,
		MissCount:    c.missCount,
	}

	if total := c.hitCount + c.missCount; total > 0 {
		stats.HitRate = float64(c.hitCount) / float64(total)
	}

	now := time.Now()
	var totalAge time.Duration
	for _, entry := range c.entries {
		if stats.OldestEntry.IsZero() || entry.CreatedAt.Before(stats.OldestEntry) {
			stats.OldestEntry = entry.CreatedAt
		}
		totalAge += now.Sub(entry.CreatedAt)

		if data, err := json.Marshal(entry); err == nil {
			stats.MemoryUsage += int64(len(data))
		}
	}

	if stats.TotalEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.TotalEntries)
	}

	return stats, nil
}

// Close stops the cleanup goroutine
func (c *MemoryCache) Close() error {
	close(c.stopCleanup)
	return nil
}

// cleanup periodically removes expired entries
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCleanup:
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

// cleanupExpired removes expired entries
func (c *MemoryCache) cleanupExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}

// CloudStorageCache implements cache using Google Cloud Storage with JSON
// objects, so stateless Cloud Functions instances share warmed tips.
type CloudStorageCache struct {
	client     *storage.Client
	bucketName string
	duration   time.Duration
	prefix     string
}

// NewCloudStorageCache creates a new Cloud Storage cache
func NewCloudStorageCache(bucketName string, duration time.Duration) (*CloudStorageCache, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &CloudStorageCache{
		client:     client,
		bucketName: bucketName,
		duration:   duration,
		prefix:     "tips/",
	}, nil
}

// Get retrieves an entry from Cloud Storage
func (c *CloudStorageCache) Get(ctx context.Context, key string) (*TipEntry, error) {
	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("opening object reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object data: %w", err)
	}

	var entry TipEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling cache entry: %w", err)
	}

	if time.Now().After(entry.ExpiresAt) {
		if err := c.Delete(ctx, key); err != nil {
			log.Printf("Warning: failed to delete expired cache entry %s: %v", key, err)
		}
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Set stores an entry in Cloud Storage
func (c *CloudStorageCache) Set(ctx context.Context, key string, entry *TipEntry) error {
	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))

	now := time.Now()
	entry.Key = key
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.ExpiresAt = now.Add(c.duration)
	if entry.AccessedAt.IsZero() {
		entry.AccessedAt = now
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	writer := obj.NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return fmt.Errorf("writing object data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}

	return nil
}

// Delete removes an entry from Cloud Storage
func (c *CloudStorageCache) Delete(ctx context.Context, key string) error {
	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))

	if err := obj.Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("deleting object: %w", err)
	}

	return nil
}

// Exists checks if an entry exists in Cloud Storage
func (c *CloudStorageCache) Exists(ctx context.Context, key string) (bool, error) {
	obj := c.client.Bucket(c.bucketName).Object(c.objectName(key))

	if _, err := obj.Attrs(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return false, nil
		}
		return false, fmt.Errorf("getting object attributes: %w", err)
	}

	return true, nil
}

// Clear removes all entries from Cloud Storage with the cache prefix
func (c *CloudStorageCache) Clear(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	it := bucket.Objects(ctx, &storage.Query{Prefix: c.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("listing objects: %w", err)
		}

		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("deleting object %s: %w", attrs.Name, err)
		}
	}

	return nil
}

// GetStats returns cache statistics for Cloud Storage
func (c *CloudStorageCache) GetStats(ctx context.Context) (*Stats, error) {
	bucket := c.client.Bucket(c.bucketName)
	it := bucket.Objects(ctx, &storage.Query{Prefix: c.prefix})

	// Hit/miss counts are not tracked for the Cloud Storage backend.
	stats := &Stats{}

	var totalAge time.Duration
	now := time.Now()

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		stats.TotalEntries++
		stats.MemoryUsage += attrs.Size

		if stats.OldestEntry.IsZero() || attrs.Created.Before(stats.OldestEntry) {
			stats.OldestEntry = attrs.Created
		}
		totalAge += now.Sub(attrs.Created)
	}

	if stats.TotalEntries > 0 {
		stats.AverageAge = totalAge / time.Duration(stats.TotalEntries)
	}

	return stats, nil
}

// Close closes the Cloud Storage client
func (c *CloudStorageCache) Close() error {
	return c.client.Close()
}

func (c *CloudStorageCache) objectName(key string) string {
	return c.prefix + key + ".json"
}

// Manager handles cache operations with convenience methods
type Manager struct {
	cache Cache
}

// NewManager creates a cache manager backed by the configured cache type.
func NewManager(cacheType, bucket string, duration time.Duration) (*Manager, error) {
	var (
		cache Cache
		err   error
	)

	switch cacheType {
	case "memory":
		cache = NewMemoryCache(duration)
	case "cloud-storage":
		cache, err = NewCloudStorageCache(bucket, duration)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}

	return &Manager{cache: cache}, nil
}

// GetTip retrieves a cached tip for a classification
func (m *Manager) GetTip(ctx context.Context, category bmi.Category) (*gemini.GenerateResponse, error) {
	entry, err := m.cache.Get(ctx, GenerateKey(category))
	if err != nil {
		return nil, err
	}

	return &entry.Tip, nil
}

// SetTip caches a tip for a classification
func (m *Manager) SetTip(ctx context.Context, category bmi.Category, tip gemini.GenerateResponse) error {
	entry := &TipEntry{
		Classification: string(category),
		Tip:            tip,
	}

	return m.cache.Set(ctx, GenerateKey(category), entry)
}

// IsCached checks if a classification already has a cached tip
func (m *Manager) IsCached(ctx context.Context, category bmi.Category) (bool, error) {
	return m.cache.Exists(ctx, GenerateKey(category))
}

// GetStats returns cache statistics
func (m *Manager) GetStats(ctx context.Context) (*Stats, error) {
	return m.cache.GetStats(ctx)
}

// Clear clears all cached entries
func (m *Manager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Close releases the underlying cache resources
func (m *Manager) Close() error {
	return m.cache.Close()
}

// GenerateKey generates a cache key for a classification
func GenerateKey(category bmi.Category) string {
	// MD5 keeps keys a consistent length and object-name safe.
	hash := md5.Sum([]byte(category))
	return fmt.Sprintf("tip:%x", hash)
}
