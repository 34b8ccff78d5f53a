package redis

const (
	// incrementCounterScript atomically applies a delta to a counter and
	// floors the result at zero. INCRBY alone can go negative when a
	// manual-study decrement exceeds the logged time, so the clamp has
	// to happen in the same script.
	incrementCounterScript = `
local key = KEYS[1]
local delta = tonumber(ARGV[1])

local value = redis.call('INCRBY', key, delta)
if value < 0 then
  redis.call('SET', key, 0)
  value = 0
end

return value
`
)
