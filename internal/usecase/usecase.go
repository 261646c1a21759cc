// Package usecase holds what the users and agenda services share: a
// metered read cache and the free text sanitisers.
package usecase

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultCacheTTL = 5 * time.Minute

var (
	cacheItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ocall",
			Name:      "cache_items",
			Help:      "The amount of entities held in a service read cache",
		}, []string{"cache"})

	plainText = bluemonday.StrictPolicy()
	richText  = bluemonday.UGCPolicy()
)

func init() {
	prometheus.MustRegister(cacheItems)
}

// Cache is a TTL read cache keyed by entity id.
type Cache struct {
	name string
	c    *cache.Cache
}

func NewCache(name string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{name: name, c: cache.New(ttl, 2*ttl)}
}

func (c *Cache) Get(key string) (any, bool) {
	return c.c.Get(key)
}

func (c *Cache) Set(key string, v any) {
	c.c.SetDefault(key, v)
	c.observe()
}

func (c *Cache) Delete(key string) {
	c.c.Delete(key)
	c.observe()
}

func (c *Cache) Flush() {
	c.c.Flush()
	c.observe()
}

func (c *Cache) Len() int {
	return c.c.ItemCount()
}

func (c *Cache) observe() {
	cacheItems.WithLabelValues(c.name).Set(float64(c.c.ItemCount()))
}

// PlainText strips all markup from s. Entities produced by the sanitiser
// are decoded again so names like "Rock & Roll" survive unchanged.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

// RichText keeps the safe subset of user generated HTML.
func RichText(s string) string {
	return strings.TrimSpace(richText.Sanitize(s))
}
