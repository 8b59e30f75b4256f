package model

// Survey roles.
const (
	RoleGiver    = "giver"
	RoleReceiver = "receiver"
)

// FilterAll is the "no filter" sentinel used by cohort criteria.
const FilterAll = "all"

// DefaultGreeting is used when a submission carries no greeting.
const DefaultGreeting = "恭喜發財"

// DefaultSubmitMessage is reported when the sheet accepts a row without a message of its own.
const DefaultSubmitMessage = "問卷提交成功"

// HKDistricts lists Hong Kong's 18 administrative districts.
var HKDistricts = []string{
	"中西區",
	"灣仔",
	"東區",
	"南區",
	"油尖旺",
	"深水埗",
	"九龍城",
	"黃大仙",
	"觀塘",
	"葵青",
	"荃灣",
	"屯門",
	"元朗",
	"北區",
	"大埔",
	"沙田",
	"西貢",
	"離島",
}

var AgeGroups = []string{
	"18歲以下",
	"18-22歲",
	"23-30歲",
	"31-40歲",
	"41-50歲",
	"51歲以上",
}

var Roles = []RoleOption{
	{ID: RoleGiver, Label: "我要派利是"},
	{ID: RoleReceiver, Label: "我係收利是"},
}

// Relations is the suggested list of lai see recipients. Values outside it are accepted.
var Relations = []string{
	"阿媽",
	"阿爸",
	"老婆",
	"老公",
	"仔女",
	"姪仔姪女",
	"同事",
	"下屬",
	"老細",
	"朋友仔女",
	"看更",
	"保安",
	"清潔姐姐",
	"茶記伙記",
	"侍應",
	"速遞員",
	"司機",
	"補習老師",
	"興趣班導師",
	"屋企工人",
	"親戚",
	"長輩",
	"後輩",
}

// SuggestedAmounts are the preset amounts (HKD) offered by the form.
var SuggestedAmounts = []int{20, 50, 100, 500, 1000}

var Greetings = []string{
	DefaultGreeting,
	"身體健康",
	"心想事成",
	"萬事如意",
	"財源廣進",
	"步步高陞",
	"龍馬精神",
	"生意興隆",
	"大吉大利",
	"如意吉祥",
}

var GiverIdentities = []Identity{
	{ID: "boss", Name: "老闆 / 管理層", Emoji: "👔", Description: "派開大封"},
	{ID: "professional", Name: "專業人士", Emoji: "💼", Description: "醫生、律師、金融才俊"},
	{ID: "civil_servant", Name: "公務員", Emoji: "🏛️", Description: "鐵飯碗，穩定派"},
	{ID: "office_worker", Name: "一般打工仔", Emoji: "🧑‍💻", Description: "普遍大眾"},
	{ID: "freelancer", Name: "自僱 / Freelancer", Emoji: "🎨", Description: "彈性收入"},
	{ID: "homemaker", Name: "全職主婦 / 主夫", Emoji: "🏠", Description: "掌握家中財政大權"},
	{ID: "retiree", Name: "退休人士", Emoji: "🧓", Description: "派畀孫仔孫女"},
	{ID: "service", Name: "服務業", Emoji: "🍡", Description: "前線人員"},
}

var ReceiverIdentities = []Identity{
	{ID: "student", Name: "在學學生", Emoji: "📚", Description: "讀緊書，利是錢好重要"},
	{ID: "fresh_grad", Name: "職場新人 / Fresh Grad", Emoji: "🎓", Description: "啱啱出嚟做嘢"},
	{ID: "unmarried", Name: "未婚單身貴族", Emoji: "💎", Description: "未結婚，繼續收"},
	{ID: "security", Name: "保安 / 物管", Emoji: "🛡️", Description: "日日幫你守門口"},
	{ID: "service_staff", Name: "餐飲 / 服務員", Emoji: "🍜", Description: "招呼街坊"},
	{ID: "cleaner", Name: "清潔 / 後勤", Emoji: "🧹", Description: "默默付出"},
	{ID: "kids", Name: "小朋友 / BB", Emoji: "👶", Description: "逗利是最開心"},
	{ID: "other", Name: "待業 / 其他", Emoji: "🙋", Description: "其他身份"},
}

// IdentitiesFor returns the identity list for a role, or nil for an unknown role.
func IdentitiesFor(role string) []Identity {
	switch role {
	case RoleGiver:
		return GiverIdentities
	case RoleReceiver:
		return ReceiverIdentities
	}
	return nil
}

// IsDistrict reports whether name is one of the 18 districts.
func IsDistrict(name string) bool {
	for _, d := range HKDistricts {
		if d == name {
			return true
		}
	}
	return false
}

func IsAgeGroup(name string) bool {
	for _, a := range AgeGroups {
		if a == name {
			return true
		}
	}
	return false
}
