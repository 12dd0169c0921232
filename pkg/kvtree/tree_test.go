package kvtree

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type product struct {
	Title string `json:"title"`
	Price string `json:"price"`
	Buyer string `json:"buyer,omitempty"`
}

func newRedisTree(t *testing.T) Tree {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTree(client, "test")
}

func newSQLiteTree(t *testing.T) Tree {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive across queries
	sqlDB.SetMaxOpenConns(1)
	tree := NewSQLTree(db)
	require.NoError(t, tree.Migrate(context.Background()))
	return tree
}

var backends = map[string]func(t *testing.T) Tree{
	"memory": func(*testing.T) Tree { return NewMemoryTree() },
	"redis":  newRedisTree,
	"sqlite": newSQLiteTree,
}

func forEachBackend(t *testing.T, fn func(t *testing.T, tree Tree)) {
	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestSetGet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, product{Title: "lamp", Price: "5000"}, "item", "lamp"))

		raw, err := tree.Get(ctx, "item", "lamp")
		require.NoError(t, err)
		var got product
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, product{Title: "lamp", Price: "5000"}, got)

		raw, err = tree.Get(ctx, "item", "lamp", "price")
		require.NoError(t, err)
		assert.JSONEq(t, `"5000"`, string(raw))
	})
}

func TestGetMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		_, err := tree.Get(context.Background(), "item", "nothing")
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := Exists(context.Background(), tree, "item", "nothing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSetOverwritesWholeSubtree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, product{Title: "a", Price: "1", Buyer: "kim"}, "item", "a"))
		require.NoError(t, tree.Set(ctx, product{Title: "a", Price: "2"}, "item", "a"))

		raw, err := tree.Get(ctx, "item", "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"a","price":"2"}`, string(raw))
	})
}

func TestUpdateMergesFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, product{Title: "a", Price: "1"}, "item", "a"))
		require.NoError(t, tree.Update(ctx, map[string]interface{}{"buyer": "lee", "price": nil}, "item", "a"))

		raw, err := tree.Get(ctx, "item", "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"a","buyer":"lee"}`, string(raw))
	})
}

func TestRemoveSubtree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, true, "likes", "lamp", "kim"))
		require.NoError(t, tree.Set(ctx, true, "likes", "lamp", "lee"))
		require.NoError(t, tree.Set(ctx, true, "likes", "lampshade", "kim"))

		require.NoError(t, tree.Remove(ctx, "likes", "lamp"))

		children, err := tree.Children(ctx, "likes")
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "lampshade", children[0].Key)

		// removing an absent node is not an error
		assert.NoError(t, tree.Remove(ctx, "likes", "ghost"))
	})
}

func TestCaseDistinctKeys(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, product{Title: "bag", Price: "1000"}, "item", "bag"))
		require.NoError(t, tree.Set(ctx, true, "likes", "bag", "kim"))
		require.NoError(t, tree.Set(ctx, product{Title: "Bag", Price: "2000"}, "item", "Bag"))
		require.NoError(t, tree.Set(ctx, true, "likes", "Bag", "lee"))

		children, err := tree.Children(ctx, "item")
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "bag", children[0].Key)
		assert.Equal(t, "Bag", children[1].Key)

		require.NoError(t, tree.Remove(ctx, "likes", "Bag"))
		raw, err := tree.Get(ctx, "likes", "bag")
		require.NoError(t, err)
		assert.JSONEq(t, `{"kim":true}`, string(raw))

		raw, err = tree.Get(ctx, "item", "bag")
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"bag","price":"1000"}`, string(raw))
	})
}

func TestWildcardCharactersInKeys(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, true, "likes", "50% off_x", "kim"))
		require.NoError(t, tree.Set(ctx, true, "likes", "50X offYx", "lee"))

		require.NoError(t, tree.Remove(ctx, "likes", "50% off_x"))

		children, err := tree.Children(ctx, "likes")
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, "50X offYx", children[0].Key)
	})
}

func TestSetNilRemoves(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, true, "likes", "lamp", "kim"))
		require.NoError(t, tree.Set(ctx, nil, "likes", "lamp", "kim"))

		children, err := tree.Children(ctx, "likes", "lamp")
		require.NoError(t, err)
		assert.Empty(t, children)
	})
}

func TestChildrenInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		for _, title := range []string{"zebra", "apple", "mango"} {
			require.NoError(t, tree.Set(ctx, product{Title: title}, "item", title))
		}
		// overwriting keeps the original position
		require.NoError(t, tree.Set(ctx, product{Title: "zebra", Price: "9"}, "item", "zebra"))

		children, err := tree.Children(ctx, "item")
		require.NoError(t, err)
		keys := make([]string, len(children))
		for i, c := range children {
			keys[i] = c.Key
		}
		assert.Equal(t, []string{"zebra", "apple", "mango"}, keys)

		var first product
		require.NoError(t, children[0].Decode(&first))
		assert.Equal(t, "9", first.Price)
	})
}

func TestChildrenOfMissingNode(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		children, err := tree.Children(context.Background(), "likes", "nothing")
		require.NoError(t, err)
		assert.Empty(t, children)
	})
}

func TestPushGeneratesOrderedKeys(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		k1, err := tree.Push(ctx, map[string]string{"id": "first"}, "user")
		require.NoError(t, err)
		k2, err := tree.Push(ctx, map[string]string{"id": "second"}, "user")
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)

		children, err := tree.Children(ctx, "user")
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, k1, children[0].Key)
		assert.Equal(t, k2, children[1].Key)
	})
}

func TestInvalidKey(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		assert.ErrorIs(t, tree.Set(ctx, true, "item", "a/b"), ErrInvalidKey)
		assert.ErrorIs(t, tree.Set(ctx, true, "item", ""), ErrInvalidKey)
		_, err := tree.Get(ctx, "item", "a.b")
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestScalarReplacedByObject(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tree Tree) {
		ctx := context.Background()
		require.NoError(t, tree.Set(ctx, "flat", "item", "a"))
		require.NoError(t, tree.Set(ctx, "5000", "item", "a", "price"))

		raw, err := tree.Get(ctx, "item", "a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"price":"5000"}`, string(raw))
	})
}

func TestMemoryTreeClosed(t *testing.T) {
	tree := NewMemoryTree()
	require.NoError(t, tree.Close())
	assert.ErrorIs(t, tree.Ping(context.Background()), ErrClosed)
	assert.ErrorIs(t, tree.Set(context.Background(), true, "a"), ErrClosed)
}

func TestEscapeHelpers(t *testing.T) {
	assert.Equal(t, `a\*b\?`, escapeGlob("a*b?"))
}

func TestMySQLDSNForcesUTF8MB4(t *testing.T) {
	dsn, err := mysqlDSN("market:pw@tcp(localhost:3306)/market")
	require.NoError(t, err)
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "collation=utf8mb4_bin")
	assert.Contains(t, dsn, "@tcp(localhost:3306)/market")

	_, err = mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "firebase"})
	assert.Error(t, err)

	tree, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.NoError(t, tree.Ping(context.Background()))
}
