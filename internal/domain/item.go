package domain

// SoldStatus marks an item as sold. Other status values are free text.
const SoldStatus = "거래 완료"

// soldAlias is accepted on read for records written by older clients.
const soldAlias = "sold"

// TradeMethod 거래 방법
const (
	TradeMethodDirect   = "direct"   // 직거래
	TradeMethodDelivery = "delivery" // 택배
	TradeMethodBoth     = "both"     // 직거래+택배
)

// Item 중고 상품 레코드 (item/<title>)
type Item struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Region      string `json:"region"`
	Status      string `json:"status"`
	Desc        string `json:"desc"`
	Author      string `json:"author"`
	ImgPath     string `json:"img_path"`
	Category    string `json:"category"`
	TradeMethod string `json:"trade_method"`
	CreatedAt   string `json:"created_at"`
	Buyer       string `json:"buyer,omitempty"`
}

// IsSold reports whether the item can no longer be purchased
func (i *Item) IsSold() bool {
	return i.Status == SoldStatus || i.Status == soldAlias || i.Buyer != ""
}

// ItemForm 상품 등록/수정 요청
type ItemForm struct {
	Title       string `json:"title" form:"title" validate:"required,max=100,excludesall=.$#[]/"`
	Price       string `json:"price" form:"price" validate:"required,numeric"`
	Region      string `json:"region" form:"region" validate:"max=100"`
	Status      string `json:"status" form:"status" validate:"max=30"`
	Desc        string `json:"desc" form:"desc" validate:"max=5000"`
	Category    string `json:"category" form:"category" validate:"max=50"`
	TradeMethod string `json:"trade_method" form:"trade_method" validate:"omitempty,oneof=direct delivery both"`
}

// ItemDetail 상품 상세 응답
type ItemDetail struct {
	*Item
	LikeCount int  `json:"like_count"`
	IsLiked   bool `json:"is_liked"`
	Sold      bool `json:"sold"`
}

// GetTradeText 거래방법 텍스트 반환
func GetTradeText(t string) string {
	switch t {
	case TradeMethodDirect:
		return "직거래"
	case TradeMethodDelivery:
		return "택배"
	case TradeMethodBoth:
		return "직거래/택배"
	default:
		return t
	}
}

// ItemSummary 목록용 상품 항목
type ItemSummary struct {
	Key string `json:"key"`
	*Item
	Sold bool `json:"sold"`
}

// ItemListParams 목록 조회 조건
type ItemListParams struct {
	Page     int
	PerPage  int
	Category string
	Keyword  string
}
