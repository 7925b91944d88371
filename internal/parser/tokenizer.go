package parser

// 显式分词器：按空白、逗号、分号、等号、冒号切分，保留原文偏移
// 偏移用于“标签后120字符内找价格”这类带窗口的提取

type token struct {
	text  string // 原文片段
	lower string
	start int // 在原文中的字节偏移
	end   int
}

func isSeparator(r byte) bool {
	switch r {
	case ' ', '\t', '\r', ',', ';', '=', ':':
		return true
	}
	return false
}

// tokenize 换行符单独成词，供窗口判断使用
func tokenize(text string) []token {
	tokens := make([]token, 0, 32)
	i := 0
	n := len(text)
	for i < n {
		if text[i] == '\n' {
			tokens = append(tokens, token{text: "\n", lower: "\n", start: i, end: i + 1})
			i++
			continue
		}
		if isSeparator(text[i]) {
			i++
			continue
		}
		j := i
		for j < n && !isSeparator(text[j]) && text[j] != '\n' {
			j++
		}
		raw := text[i:j]
		tokens = append(tokens, token{text: raw, lower: lowerASCII(raw), start: i, end: j})
		i = j
	}
	return tokens
}

func lowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

func (t token) isNewline() bool { return t.text == "\n" }
