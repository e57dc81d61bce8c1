package i18n

import (
	"context"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"goeasy/errors"
	"goeasy/logging"
)

// MultiValue 消息值为该标记时随机取 key.1 ... key.N 之一
const MultiValue = "_multi"

// MessageSource 多语言消息源
//
// 资源文件为 <basename>.yaml 与 <basename>_<lang>[_<REGION>].yaml，
// 键可以是扁平的点分形式，也可以是嵌套结构。加载完成后只读。
type MessageSource struct {
	bundles       map[string]map[string]string
	tags          []language.Tag
	defaultLocale language.Tag
	matcher       language.Matcher
	multiSizes    *xsync.MapOf[string, int]
	logger        logging.Logger
}

// Load 从文件系统加载消息源
func Load(fsys fs.FS, cfg Config) (*MessageSource, error) {
	defaultLocale := language.Und
	if cfg.DefaultLocale != "" {
		tag, err := ParseLocale(cfg.DefaultLocale)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeConfiguration, "invalid default locale")
		}
		defaultLocale = tag
	}

	s := &MessageSource{
		bundles:       map[string]map[string]string{"": {}},
		defaultLocale: defaultLocale,
		multiSizes:    xsync.NewMapOf[string, int](),
		logger:        logging.ComponentLogger("i18n"),
	}

	basename := cfg.Basename
	if basename == "" {
		basename = DefaultConfig().Basename
	}
	for _, base := range strings.Split(basename, ",") {
		if base = strings.TrimSpace(base); base == "" {
			continue
		}
		if err := s.loadBase(fsys, base); err != nil {
			return nil, err
		}
	}

	tags := []language.Tag{defaultLocale}
	for key := range s.bundles {
		if key == "" || key == defaultLocale.String() {
			continue
		}
		tags = append(tags, language.MustParse(key))
	}
	others := tags[1:]
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	s.tags = tags
	s.matcher = language.NewMatcher(tags)
	return s, nil
}

func (s *MessageSource) loadBase(fsys fs.FS, base string) error {
	matches, err := fs.Glob(fsys, base+"*")
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeConfiguration, "invalid i18n basename "+base)
	}
	prefix := path.Base(base)
	for _, name := range matches {
		ext := path.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		stem := strings.TrimSuffix(path.Base(name), ext)
		var key string
		switch {
		case stem == prefix:
		case strings.HasPrefix(stem, prefix+"_"):
			tag, err := ParseLocale(strings.TrimPrefix(stem, prefix+"_"))
			if err != nil {
				s.logger.Warn(context.Background(), "skip message file with invalid locale", logging.String("file", name))
				continue
			}
			key = tag.String()
		default:
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.WrapError(err, errors.ErrCodeConfiguration, "read message file "+name)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return errors.WrapError(err, errors.ErrCodeConfiguration, "parse message file "+name)
		}

		bundle, ok := s.bundles[key]
		if !ok {
			bundle = make(map[string]string)
			s.bundles[key] = bundle
		}
		flatten("", raw, bundle)
		s.logger.Debug(context.Background(), "message file loaded",
			logging.String("file", name), logging.String("locale", key), logging.Int("messages", len(bundle)))
	}
	return nil
}

func flatten(prefix string, node any, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			flatten(join(k), child, out)
		}
	case map[any]any:
		for k, child := range v {
			flatten(join(fmt.Sprint(k)), child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = ""
		}
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

// DefaultLocale 返回默认语言
func (s *MessageSource) DefaultLocale() language.Tag { return s.defaultLocale }

// Tags 返回支持的语言，首个为默认语言
func (s *MessageSource) Tags() []language.Tag {
	return append([]language.Tag(nil), s.tags...)
}

// Match 按 Accept-Language 选择支持的语言，无匹配时返回默认语言
func (s *MessageSource) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return s.defaultLocale
	}
	_, idx, conf := s.matcher.Match(prefs...)
	if conf == language.No {
		return s.defaultLocale
	}
	return s.tags[idx]
}

// Get 按 context 中的语言读取消息，未找到时返回 key
func (s *MessageSource) Get(ctx context.Context, key string, args ...any) string {
	tag, ok := Locale(ctx)
	if !ok {
		tag = s.defaultLocale
	}
	return s.Message(tag, key, args...)
}

// Message 按指定语言读取消息
//
// 查找顺序：完整语言、基础语言、默认语言、基础资源文件。
func (s *MessageSource) Message(tag language.Tag, key string, args ...any) string {
	chain := s.chain(tag)
	msg, ok := s.lookup(chain, key)
	if !ok {
		return key
	}
	if msg == MultiValue {
		size := s.multiSize(chain, tag, key)
		if size == 0 {
			return key
		}
		variant := key + "." + strconv.Itoa(rand.IntN(size)+1)
		if msg, ok = s.lookup(chain, variant); !ok {
			return key
		}
	}
	return format(msg, args)
}

// All 返回指定语言下的全部消息（基础资源文件与语言资源合并）
func (s *MessageSource) All(tag language.Tag) map[string]string {
	chain := s.chain(tag)
	all := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i] {
			all[k] = v
		}
	}
	return all
}

func (s *MessageSource) chain(tag language.Tag) []map[string]string {
	seen := make(map[string]bool, 5)
	chain := make([]map[string]string, 0, 5)
	add := func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		if bundle, ok := s.bundles[key]; ok {
			chain = append(chain, bundle)
		}
	}
	for _, t := range []language.Tag{tag, s.defaultLocale} {
		if t == language.Und {
			continue
		}
		add(t.String())
		if base, conf := t.Base(); conf != language.No {
			add(base.String())
		}
	}
	add("")
	return chain
}

func (s *MessageSource) lookup(chain []map[string]string, key string) (string, bool) {
	for _, bundle := range chain {
		if msg, ok := bundle[key]; ok {
			return msg, true
		}
	}
	return "", false
}

func (s *MessageSource) multiSize(chain []map[string]string, tag language.Tag, key string) int {
	size, _ := s.multiSizes.LoadOrCompute(key+"|"+tag.String(), func() int {
		n := 0
		for {
			if _, ok := s.lookup(chain, key+"."+strconv.Itoa(n+1)); !ok {
				return n
			}
			n++
		}
	})
	return size
}

// format 以 {0} {1} 占位符填充参数
func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
