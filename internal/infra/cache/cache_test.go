package cache_test

import (
	"testing"
	"time"

	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/domain"
	"github.com/SURYAMurugan2211/Income-and-Expence-Tracker/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[[]domain.Category](5 * time.Minute)

	catalog := []domain.Category{
		{ID: "c1", Name: "Food", Type: domain.CategoryExpense},
		{ID: "c2", Name: "Salary", Type: domain.CategoryIncome},
	}
	c.Set("catalog", catalog)

	got, ok := c.Get("catalog")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if len(got) != 2 || got[0].Name != "Food" {
		t.Errorf("unexpected cached catalog: %+v", got)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[[]domain.Category](5 * time.Minute)

	_, ok := c.Get("nonexistent")
	if ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[[]domain.Category](50 * time.Millisecond)

	c.Set("catalog", []domain.Category{{ID: "c1", Name: "Food"}})
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("catalog")
	if ok {
		t.Fatal("expected cache entry to be expired")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[[]domain.Category](5 * time.Minute)

	c.Set("catalog", []domain.Category{{ID: "c1", Name: "Food"}})
	c.Delete("catalog")

	_, ok := c.Get("catalog")
	if ok {
		t.Fatal("expected key to be deleted")
	}
}
