package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client
var Ctx = context.Background()

// InitRedis inicializa la conexión a Redis
func InitRedis() error {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")
	dbStr := getEnv("REDIS_DB", "0")

	db, err := strconv.Atoi(dbStr)
	if err != nil {
		db = 0
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	})

	if err := Redis.Ping(Ctx).Err(); err != nil {
		return fmt.Errorf("no se pudo conectar a Redis: %w", err)
	}

	log.Println("✅ Conectado a Redis correctamente")
	return nil
}

// GetRedis devuelve la instancia del cliente Redis
func GetRedis() *redis.Client {
	return Redis
}

// CacheSet guarda un valor en caché con TTL
func CacheSet(key string, value interface{}, ttl time.Duration) error {
	return Redis.Set(Ctx, key, value, ttl).Err()
}

// CacheGet obtiene un valor del caché
func CacheGet(key string) (string, error) {
	return Redis.Get(Ctx, key).Result()
}

// CacheDel elimina un valor del caché
func CacheDel(key string) error {
	return Redis.Del(Ctx, key).Err()
}

// CacheExists verifica la existencia de una clave en el caché
func CacheExists(key string) (bool, error) {
	count, err := Redis.Exists(Ctx, key).Result()
	return count > 0, err
}

// CacheSetJSON guarda un objeto JSON en el caché
func CacheSetJSON(key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error al serializar JSON: %w", err)
	}
	return CacheSet(key, string(jsonData), ttl)
}

// CacheGetJSON obtiene un objeto JSON del caché
func CacheGetJSON(key string, dest interface{}) error {
	jsonData, err := CacheGet(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return fmt.Errorf("error al deserializar JSON: %w", err)
	}

	return nil
}

// CacheIncr incrementa un contador
func CacheIncr(key string) (int64, error) {
	return Redis.Incr(Ctx, key).Result()
}

// CacheExpire establece el TTL de una clave
func CacheExpire(key string, ttl time.Duration) error {
	return Redis.Expire(Ctx, key, ttl).Err()
}

// CacheFlushDB limpia la BD actual de Redis (para pruebas)
func CacheFlushDB() error {
	return Redis.FlushDB(Ctx).Err()
}

// GenerateCacheKey genera una clave de caché con aislamiento por restaurante
func GenerateCacheKey(idRestaurante uint, prefix string, suffix string) string {
	return fmt.Sprintf("restaurante:%d:%s:%s", idRestaurante, prefix, suffix)
}

// GeneratePlanCacheKey genera la clave de caché del catálogo de planes.
// El catálogo es compartido por todos los tenants.
func GeneratePlanCacheKey(idPlan uint) string {
	return fmt.Sprintf("catalogo:plan:%d", idPlan)
}

// ClearRestauranteCache limpia todo el caché de un restaurante
func ClearRestauranteCache(idRestaurante uint) error {
	pattern := fmt.Sprintf("restaurante:%d:*", idRestaurante)
	keys, err := Redis.Keys(Ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return Redis.Del(Ctx, keys...).Err()
	}

	return nil
}

// ClearPlanCache invalida el caché del catálogo tras un cambio administrativo
func ClearPlanCache() error {
	keys, err := Redis.Keys(Ctx, "catalogo:plan:*").Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return Redis.Del(Ctx, keys...).Err()
	}

	return nil
}

// RateLimitCheck verifica el rate limit de un vendedor
func RateLimitCheck(idRestaurante uint, idVendedor uint, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:restaurante:%d:vendedor:%d:%s", idRestaurante, idVendedor, action)

	pipe := Redis.Pipeline()
	incr := pipe.Incr(Ctx, key)
	pipe.Expire(Ctx, key, window)
	_, err := pipe.Exec(Ctx)

	if err != nil {
		return false, err
	}

	count, err := incr.Result()
	if err != nil {
		return false, err
	}

	return count <= limit, nil
}
