package ai

import "strings"

// noFlagsArabic is the placeholder shown when no indicators were found
const noFlagsArabic = "لم يتم اكتشاف مؤشرات احتيال واضحة"

// flagTranslations maps red-flag keywords to user-facing Arabic labels.
// Matching is substring-based so LLM phrasing variations still resolve.
var flagTranslations = []struct {
	key   string
	label string
}{
	{"urgency", "أسلوب الاستعجال والضغط"},
	{"urgent", "أسلوب الاستعجال والضغط"},
	{"pressure", "أسلوب ضغط وإكراه"},
	{"suspicious url", "رابط غير موثوق"},
	{"shortened url", "روابط مختصرة مشبوهة"},
	{"url shortener", "روابط مختصرة مشبوهة"},
	{"shortener", "روابط مختصرة"},
	{"personal information", "طلب معلومات حساسة"},
	{"personal info", "طلب معلومات حساسة"},
	{"password", "طلب كلمة مرور"},
	{"impersonation", "انتحال هوية جهة رسمية"},
	{"government", "انتحال صفة جهة حكومية"},
	{"threat", "تهديدات وإنذارات"},
	{"threatening", "لغة تهديدية"},
	{"reward", "وعود بجوائز ومكافآت"},
	{"prize", "وعود بجوائز وهمية"},
	{"lottery", "وعود بجوائز وهمية"},
	{"lookalike", "نطاق مشابه لجهة رسمية"},
	{"suspicious domain", "نطاق غير موثوق"},
	{"insecure", "اتصال غير آمن"},
	{"social engineering", "محاولة خداع نفسي"},
	{"phishing", "محاولة احتيال"},
	{"sensitive data", "طلب بيانات حساسة"},
	{"sensitive", "طلب بيانات حساسة"},
}

// translateRedFlag returns the Arabic label for a red flag, or the
// original text when no translation matches.
func translateRedFlag(flag string) string {
	lower := strings.ToLower(flag)
	for _, t := range flagTranslations {
		if strings.Contains(lower, t.key) {
			return t.label
		}
	}
	return flag
}

// translateRedFlags maps a flag list to Arabic, substituting the
// no-findings placeholder for an empty list.
func translateRedFlags(flags []string) []string {
	if len(flags) == 0 {
		return []string{noFlagsArabic}
	}
	out := make([]string, len(flags))
	for i, f := range flags {
		out[i] = translateRedFlag(f)
	}
	return out
}
