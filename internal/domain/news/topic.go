package news

import "strings"

// DefaultTopic is assigned when no keyword table entry matches a title.
const DefaultTopic = "General"

type topicRule struct {
	topic    string
	keywords []string
}

// topicRules is scanned in order; the first topic with a matching keyword
// wins, so earlier entries take precedence when a title mentions several
// domains.
var topicRules = []topicRule{
	{topic: "AI", keywords: []string{"ai", "artificial intelligence", "machine learning", "llm", "openai", "deep learning", "neural"}},
	{topic: "Cloud", keywords: []string{"cloud", "aws", "azure", "kubernetes", "serverless", "saas"}},
	{topic: "Security", keywords: []string{"security", "breach", "hack", "ransomware", "vulnerability", "malware", "phishing"}},
	{topic: "Hardware", keywords: []string{"chip", "semiconductor", "gpu", "processor", "hardware", "robotics"}},
	{topic: "Startups", keywords: []string{"startup", "funding", "seed round", "series a", "venture", "vc"}},
}

// ClassifyTopic derives a topic from a news title by case-insensitive keyword
// scan. Titles matching nothing classify as General.
func ClassifyTopic(title string) string {
	lowered := strings.ToLower(title)
	for _, rule := range topicRules {
		for _, keyword := range rule.keywords {
			if containsKeyword(lowered, keyword) {
				return rule.topic
			}
		}
	}
	return DefaultTopic
}

// containsKeyword matches keywords of three characters or fewer only as whole
// words; longer keywords and multi-word phrases match as substrings.
func containsKeyword(lowered, keyword string) bool {
	if len(keyword) > 3 {
		return strings.Contains(lowered, keyword)
	}
	return containsWord(lowered, keyword)
}

func containsWord(lowered, word string) bool {
	for start := 0; ; {
		i := strings.Index(lowered[start:], word)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(word)
		if (i == 0 || !isWordByte(lowered[i-1])) && (end == len(lowered) || !isWordByte(lowered[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
