package database

// characterSeed 角色初始数据
type characterSeed struct {
	Name   string
	NameEn string
}

// defaultCharacters 全角色（按选择画面顺序）
var defaultCharacters = []characterSeed{
	{"ソル=バッドガイ", "Sol Badguy"},
	{"カイ=キスク", "Ky Kiske"},
	{"メイ", "May"},
	{"アクセル=ロウ", "Axl Low"},
	{"チップ=ザナフ", "Chipp Zanuff"},
	{"ポチョムキン", "Potemkin"},
	{"ファウスト", "Faust"},
	{"ミリア=レイジ", "Millia Rage"},
	{"ザトー=ONE", "Zato-1"},
	{"ラムレザル=ヴァレンタイン", "Ramlethal Valentine"},
	{"レオ=ホワイトファング", "Leo Whitefang"},
	{"名残雪", "Nagoriyuki"},
	{"ジオヴァーナ", "Giovanna"},
	{"御津闇慈", "Anji Mito"},
	{"イノ", "I-No"},
	{"ゴールドルイス=ディキンソン", "Goldlewis Dickinson"},
	{"ジャック・オー", "Jack-O'"},
	{"ハッピーケイオス", "Happy Chaos"},
	{"梅喧", "Baiken"},
	{"テスタメント", "Testament"},
	{"ブリジット", "Bridget"},
	{"シン=キスク", "Sin Kiske"},
	{"ベッドマン?", "Bedman?"},
	{"アスカ", "Asuka R#"},
	{"ジョニー", "Johnny"},
	{"エルフェルト=ヴァレンタイン", "Elphelt Valentine"},
	{"A.B.A", "A.B.A"},
	{"スレイヤー", "Slayer"},
	{"ディズィー", "Dizzy"},
	{"ヴェノム", "Venom"},
	{"ユニカ", "Unika"},
	{"ルーシー", "Lucy"},
}

// ComboMissReason 启动时保证存在的共通败因
const ComboMissReason = "コンボミス"

// defaultDefeatReasons 共通败因初始数据
var defaultDefeatReasons = []string{
	"対空が出ない",
	"起き攻めを通された",
	"固めから抜けられない",
	"投げを通された",
	"確定反撃を取れなかった",
	"距離管理ミス",
	"ゲージ管理ミス",
	"キャラ対策不足",
	"暴れを潰された",
	"焦って読み負けた",
}

// moveSeed 共通招式初始数据
type moveSeed struct {
	Name     string
	NameEn   string
	Notation string
	Type     string
}

// defaultCommonMoves 全角色共通招式
var defaultCommonMoves = []moveSeed{
	// 地上通常技
	{"立ちパンチ", "Standing Punch", "5P", "通常技"},
	{"立ちキック", "Standing Kick", "5K", "通常技"},
	{"近スラッシュ", "Close Slash", "近S", "通常技"},
	{"遠スラッシュ", "Far Slash", "遠S", "通常技"},
	{"立ちヘビースラッシュ", "Standing Heavy Slash", "5HS", "通常技"},
	{"しゃがみパンチ", "Crouching Punch", "2P", "通常技"},
	{"しゃがみキック", "Crouching Kick", "2K", "通常技"},
	{"しゃがみスラッシュ", "Crouching Slash", "2S", "通常技"},
	{"しゃがみヘビースラッシュ", "Crouching Heavy Slash", "2HS", "通常技"},
	{"前パンチ", "Forward Punch", "6P", "通常技"},
	{"前キック", "Forward Kick", "6K", "通常技"},
	{"前ヘビースラッシュ", "Forward Heavy Slash", "6HS", "通常技"},

	// 特殊技
	{"足払い", "Sweep", "2D", "特殊技"},
	{"ダスト", "Dust", "5D", "特殊技"},
	{"溜めダスト", "Charged Dust", "溜め5D", "特殊技"},

	// 空中技
	{"空中パンチ", "Jump Punch", "j.P", "空中技"},
	{"空中キック", "Jump Kick", "j.K", "空中技"},
	{"空中スラッシュ", "Jump Slash", "j.S", "空中技"},
	{"空中ヘビースラッシュ", "Jump Heavy Slash", "j.HS", "空中技"},
	{"空中ダスト", "Jump Dust", "j.D", "空中技"},

	// 投げ
	{"前投げ", "Forward Throw", "6D", "投げ"},
	{"後ろ投げ", "Back Throw", "4D", "投げ"},
	{"空中投げ", "Air Throw", "空中投げ", "投げ"},

	// ロマンキャンセル
	{"赤ロマキャン", "Red Roman Cancel", "赤RC", "RC"},
	{"ダッシュ赤ロマキャン", "Dash Red RC", "ダッシュ赤RC", "RC"},
	{"黄ロマキャン", "Yellow Roman Cancel", "黄RC", "RC"},
	{"紫ロマキャン", "Purple Roman Cancel", "紫RC", "RC"},
	{"ダッシュ紫ロマキャン", "Dash Purple RC", "ダッシュ紫RC", "RC"},

	// システム
	{"ワイルドアサルト", "Wild Assault", "WA", "システム"},
	{"溜めワイルドアサルト", "Charged Wild Assault", "溜めWA", "システム"},
	{"ダッキャン", "Dash Cancel", "d.c", "システム"},
	{"ジャンキャン", "Jump Cancel", "j.c", "システム"},

	// 移動
	{"ダッシュ", "Dash", "d", "移動"},
	{"バックステップ", "Backstep", "bs", "移動"},
	{"ジャンプ", "Jump", "j", "移動"},
	{"2段ジャンプ", "Double Jump", "jj", "移動"},
	{"ハイジャンプ", "High Jump", "hj", "移動"},
	{"空中ダッシュ", "Air Dash", "IAD", "移動"},
}
