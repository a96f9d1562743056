package generation

import "sync/atomic"

// promptPool 服装改绘提示词池。同一请求的不同槽位轮转取用，
// 让多张产出互相有差异。
var promptPool = []string{
	"Redress the person in a tailored charcoal business suit with a crisp white shirt, keep the face, pose and background unchanged",
	"Redress the person in a casual streetwear outfit with an oversized hoodie and relaxed jeans, keep the face, pose and background unchanged",
	"Redress the person in an elegant evening gown with subtle jewelry, keep the face, pose and background unchanged",
	"Redress the person in a cozy autumn outfit with a knit sweater and wool coat, keep the face, pose and background unchanged",
	"Redress the person in sporty athleisure wear with a fitted jacket and sneakers, keep the face, pose and background unchanged",
	"Redress the person in a classic trench coat over smart-casual attire, keep the face, pose and background unchanged",
	"Redress the person in a summer linen outfit in light colors, keep the face, pose and background unchanged",
	"Redress the person in bold avant-garde fashion with layered textures, keep the face, pose and background unchanged",
}

// PromptPool 轮转分发提示词
type PromptPool struct {
	cursor atomic.Uint64
	pool   []string
}

// NewPromptPool 创建使用内置提示词池的分发器
func NewPromptPool() *PromptPool {
	return &PromptPool{pool: promptPool}
}

// Next 返回下一条提示词
func (p *PromptPool) Next() string {
	n := p.cursor.Add(1) - 1
	return p.pool[n%uint64(len(p.pool))]
}
