package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName 是导入目录时识别的用户规则文件
const IgnoreFileName = ".vfsignore"

// defaultRules 是强制生效的系统级规则，用户规则无法覆盖掉它们的意图：
// 库元数据目录绝不能被导入 (否则导入会递归抓到自己的对象文件)，
// 凭据类文件默认不进库。
var defaultRules = []string{
	".vfs",
	".git",
	"config.yaml",
	".env",
	".DS_Store",
	"Thumbs.db",
}

// Matcher 判断一个相对路径在导入时是否应被跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 构建匹配器。rootPath 下存在 .vfsignore 时，
// 用户规则与默认规则合并编译；否则只用默认规则。
func NewMatcher(rootPath string) (*Matcher, error) {
	userFile := filepath.Join(rootPath, IgnoreFileName)

	if _, err := os.Stat(userFile); err == nil {
		ignorer, err := gitignore.CompileIgnoreFileAndLines(userFile, defaultRules...)
		if err != nil {
			return nil, err
		}
		return &Matcher{ignorer: ignorer}, nil
	}

	return &Matcher{ignorer: gitignore.CompileIgnoreLines(defaultRules...)}, nil
}

// NewMatcherFromRules 只用给定规则 (加默认规则) 构建匹配器，测试和内嵌场景用
func NewMatcherFromRules(rules ...string) *Matcher {
	all := append(append([]string{}, defaultRules...), rules...)
	return &Matcher{ignorer: gitignore.CompileIgnoreLines(all...)}
}

// Matches 报告相对路径是否命中忽略规则。
// 传入的路径应当相对导入根目录，使用 / 分隔。
func (m *Matcher) Matches(relPath string) bool {
	return m.ignorer.MatchesPath(relPath)
}
