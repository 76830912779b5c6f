package style

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ByLCY/platen/errs"
)

// Registry 保存已注册的样式。注册表冻结后只读，可在多个文档构建之间共享。
type Registry struct {
	mu     sync.RWMutex
	styles map[string]Style
	frozen bool
}

// NewRegistry 创建空的样式注册表。
func NewRegistry() *Registry {
	return &Registry{styles: map[string]Style{}}
}

// Register 注册一条样式；同名样式已存在时返回 *errs.DuplicateStyleError。
func (r *Registry) Register(s Style) error {
	if err := s.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerLocked(s)
}

func (r *Registry) registerLocked(s Style) error {
	if r.frozen {
		return fmt.Errorf("注册样式 %s 失败: %w", s.Name, errs.ErrRegistryFrozen)
	}
	if _, ok := r.styles[s.Name]; ok {
		return &errs.DuplicateStyleError{Name: s.Name}
	}
	r.styles[s.Name] = s
	return nil
}

// Extend 以 parent 为基础派生名为 name 的样式：复制父样式后由 fn 覆盖属性。
func (r *Registry) Extend(name, parent string, fn func(*Style)) error {
	base, err := r.Resolve(parent)
	if err != nil {
		return err
	}
	base.Name = name
	if fn != nil {
		fn(&base)
	}
	return r.Register(base)
}

// Resolve 按名称查找样式；不存在时返回 *errs.UnknownStyleError，不做任何隐式回退。
func (r *Registry) Resolve(name string) (Style, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.styles[name]
	if !ok {
		return Style{}, &errs.UnknownStyleError{Name: name}
	}
	return s, nil
}

// Names 返回按字典序排列的样式名。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.styles))
	for name := range r.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Freeze 冻结注册表，之后的注册都会失败。排版开始前调用。
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen 报告注册表是否已冻结。
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Clone 返回一个未冻结的副本，供独立的文档构建继续注册样式。
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &Registry{styles: make(map[string]Style, len(r.styles))}
	for k, v := range r.styles {
		out.styles[k] = v
	}
	return out
}

// Definition 描述一条待注册的样式：Extends 为空时以 Base 为起点，
// 否则以父样式为起点，再由 Apply 写入自身属性。
type Definition struct {
	Name    string
	Extends string
	Apply   func(*Style) error
}

// RegisterAll 批量注册样式定义，定义之间的继承顺序任意，继承链存在循环时报错。
// 父样式既可以在本批定义中，也可以是注册表中已有的样式。
func (r *Registry) RegisterAll(defs []Definition) error {
	byName := make(map[string]Definition, len(defs))
	order := make([]string, 0, len(defs))
	for _, def := range defs {
		if _, ok := byName[def.Name]; ok {
			return &errs.DuplicateStyleError{Name: def.Name}
		}
		byName[def.Name] = def
		order = append(order, def.Name)
	}

	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if s, ok := resolved[name]; ok {
			return s, nil
		}
		def, ok := byName[name]
		if !ok {
			return r.Resolve(name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("%w: style 继承存在循环：%s", errs.ErrConfiguration, name)
		}
		visiting[name] = true

		s := Base(name)
		if def.Extends != "" {
			parent, err := dfs(def.Extends)
			if err != nil {
				return Style{}, err
			}
			s = parent
			s.Name = name
		}
		if def.Apply != nil {
			if err := def.Apply(&s); err != nil {
				return Style{}, fmt.Errorf("样式 %s: %w", name, err)
			}
		}
		resolved[name] = s
		delete(visiting, name)
		return s, nil
	}

	for _, name := range order {
		if _, err := dfs(name); err != nil {
			return err
		}
	}
	for _, name := range order {
		if err := r.Register(resolved[name]); err != nil {
			return err
		}
	}
	return nil
}
