package notifystore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/smart-energy/internal/domain/notification"
)

// The history is one list, newest at the head. Updates run as scripts so a
// concurrent Save cannot shift the element being edited.
var (
	saveScript = valkey.NewLuaScript(`
redis.call('LPUSH', KEYS[1], ARGV[1])
redis.call('LTRIM', KEYS[1], 0, tonumber(ARGV[2]) - 1)
return 1`)

	markReadScript = valkey.NewLuaScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
for i, raw in ipairs(items) do
  local n = cjson.decode(raw)
  if n.id == ARGV[1] then
    n.read = true
    redis.call('LSET', KEYS[1], i - 1, cjson.encode(n))
    return 1
  end
end
return 0`)

	markAllReadScript = valkey.NewLuaScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
for i, raw in ipairs(items) do
  local n = cjson.decode(raw)
  if not n.read then
    n.read = true
    redis.call('LSET', KEYS[1], i - 1, cjson.encode(n))
  end
end
return #items`)

	removeScript = valkey.NewLuaScript(`
local items = redis.call('LRANGE', KEYS[1], 0, -1)
for _, raw in ipairs(items) do
  local n = cjson.decode(raw)
  if n.id == ARGV[1] then
    return redis.call('LREM', KEYS[1], 1, raw)
  end
end
return 0`)
)

// ValkeyStore persists the history in a Valkey list.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	limit  int
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, limit int) *ValkeyStore {
	if prefix == "" {
		prefix = "energy"
	}
	return &ValkeyStore{client: client, prefix: prefix, limit: normalizeLimit(limit)}
}

func (s *ValkeyStore) Save(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return saveScript.Exec(ctx, s.client, []string{s.key()}, []string{string(payload), strconv.Itoa(s.limit)}).Error()
}

func (s *ValkeyStore) List(ctx context.Context) ([]notification.Notification, error) {
	raw, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.key()).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]notification.Notification, 0, len(raw))
	for _, item := range raw {
		var n notification.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *ValkeyStore) MarkRead(ctx context.Context, id string) error {
	return s.byID(ctx, markReadScript, id)
}

func (s *ValkeyStore) MarkAllRead(ctx context.Context) error {
	return markAllReadScript.Exec(ctx, s.client, []string{s.key()}, nil).Error()
}

func (s *ValkeyStore) Remove(ctx context.Context, id string) error {
	return s.byID(ctx, removeScript, id)
}

func (s *ValkeyStore) Clear(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.key()).Build()).Error()
}

func (s *ValkeyStore) byID(ctx context.Context, script *valkey.Lua, id string) error {
	changed, err := script.Exec(ctx, s.client, []string{s.key()}, []string{id}).AsInt64()
	if err != nil {
		return err
	}
	if changed == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (s *ValkeyStore) key() string {
	return fmt.Sprintf("%s:notifications", s.prefix)
}

var _ notification.Store = (*ValkeyStore)(nil)
