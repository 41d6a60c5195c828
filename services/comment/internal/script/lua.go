package script

import "Imstagramoo/common/infra/lua"

// 点赞计数在redis中由两个key组成
// LikeNums:<postId> 点赞数；LikeUsers:<postId> 点赞用户集合，成员"#"占位保证空集合也存在

// ToggleLike
// Keys: [1]=nums [2]=users
// Argv: [1]=userId [2]=ttl(s)
// 返回{count, liked}，缓存不存在时返回{-1}
var ToggleLike *lua.Script

func init() {
	ToggleLike = lua.NewScript("toggle_like", 2, `
local nums=KEYS[1]
local users=KEYS[2]
local user=ARGV[1]
local ttl=ARGV[2]

if redis.call("EXISTS",nums)==0 or redis.call("EXISTS",users)==0 then
    return {-1}
end

local count
local liked
if redis.call("SISMEMBER",users,user)==1 then
    redis.call("SREM",users,user)
    count=redis.call("DECR",nums)
    liked=0
else
    redis.call("SADD",users,user)
    count=redis.call("INCR",nums)
    liked=1
end

redis.call("EXPIRE",nums,ttl)
redis.call("EXPIRE",users,ttl)
return {count,liked}
`)
}

// GetLike
// Keys: [1]=nums [2]=users
// Argv: [1]=userId
var GetLike *lua.Script

func init() {
	GetLike = lua.NewScript("get_like", 2, `
local nums=KEYS[1]
local users=KEYS[2]
local user=ARGV[1]

local count=redis.call("GET",nums)
if not count or redis.call("EXISTS",users)==0 then
    return {-1}
end

return {tonumber(count),redis.call("SISMEMBER",users,user)}
`)
}

// BuildLike 仅在不存在时重建
// Keys: [1]=nums [2]=users
// Argv: [1]=ttl(s) [2]=count [3...]=userId
var BuildLike *lua.Script

func init() {
	BuildLike = lua.NewScript("build_like", 2, `
local nums=KEYS[1]
local users=KEYS[2]
local ttl=ARGV[1]
local count=ARGV[2]

if redis.call("EXISTS",nums)==1 and redis.call("EXISTS",users)==1 then
    return 0
end

redis.call("DEL",nums,users)
redis.call("SET",nums,count,"EX",ttl)
redis.call("SADD",users,"#")
for i=3,#ARGV do
    redis.call("SADD",users,ARGV[i])
end
redis.call("EXPIRE",users,ttl)
return 1
`)
}

func All() []*lua.Script {
	return []*lua.Script{ToggleLike, GetLike, BuildLike}
}
