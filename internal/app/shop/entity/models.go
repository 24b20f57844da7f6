package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Типы пользователей: покупатель и магазин (партнёр)
const (
	UserTypeBuyer = "buyer"
	UserTypeShop  = "shop"
)

// User представляет пользователя сервиса заказов
// Пользователь создаётся неактивным и активируется после подтверждения почты
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"` // не возвращаем в JSON
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Company      string    `json:"company"`
	Position     string    `json:"position"`
	Type         string    `json:"type" gorm:"type:varchar(10);not null;default:'buyer'"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// ConfirmEmailToken хранит одноразовый токен подтверждения почты
// Удаляется после успешного подтверждения
type ConfirmEmailToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ConfirmEmailToken) TableName() string {
	return "confirm_email_tokens"
}

// Contact представляет адрес доставки пользователя
// У пользователя может быть несколько контактов, заказ ссылается ровно на один
type Contact struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	City      string    `json:"city" gorm:"not null"`
	Street    string    `json:"street" gorm:"not null"`
	House     string    `json:"house"`
	Structure string    `json:"structure"`
	Building  string    `json:"building"`
	Apartment string    `json:"apartment"`
	Phone     string    `json:"phone" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Contact) TableName() string {
	return "contacts"
}

// Shop представляет магазин партнёра
// Каталог магазина полностью заменяется при синхронизации по URL
type Shop struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string     `json:"name" gorm:"not null;uniqueIndex:idx_shops_name_user"`
	URL       string     `json:"url"`
	IsActive  bool       `json:"state" gorm:"not null;default:true"`
	UserID    *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_shops_name_user"` // владелец типа shop, опционально
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Shop) TableName() string {
	return "shops"
}

// Category представляет категорию товаров
// ID задаётся внешним источником (прайс-листом партнёра), не генерируется
type Category struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"not null"`
	Shops     []Shop    `json:"-" gorm:"many2many:category_shops"` // категория может продаваться в нескольких магазинах
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// Product представляет товар каталога
type Product struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name       string    `json:"name" gorm:"not null;uniqueIndex:idx_products_name_category"`
	CategoryID int64     `json:"category_id" gorm:"not null;uniqueIndex:idx_products_name_category"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}

// ProductInfo представляет позицию конкретного магазина: цена, количество, внешний id
type ProductInfo struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID  uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_infos_key"`
	ShopID     uuid.UUID       `json:"shop_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_infos_key"`
	ExternalID int64           `json:"external_id" gorm:"not null;uniqueIndex:idx_product_infos_key"`
	Model      string          `json:"model"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	PriceRRC   decimal.Decimal `json:"price_rrc" gorm:"type:decimal(12,2);not null"` // рекомендованная розничная цена
	Quantity   int             `json:"quantity" gorm:"not null"`
	Discount   int             `json:"discount" gorm:"not null;default:0"`
	Product    *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Shop       *Shop           `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	Parameters []ProductParameter `json:"product_parameters,omitempty" gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ProductInfo) TableName() string {
	return "product_infos"
}

// Parameter представляет глобальное имя характеристики (цвет, диагональ и т.п.)
// Создаётся лениво при первом упоминании в прайс-листе
type Parameter struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Parameter) TableName() string {
	return "parameters"
}

// ProductParameter представляет значение характеристики у позиции магазина
type ProductParameter struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ProductInfoID uuid.UUID  `json:"product_info_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_parameters_key"`
	ParameterID   uuid.UUID  `json:"parameter_id" gorm:"type:uuid;not null;uniqueIndex:idx_product_parameters_key"`
	Value         string     `json:"value" gorm:"not null"`
	Parameter     *Parameter `json:"parameter,omitempty" gorm:"foreignKey:ParameterID"`
}

func (ProductParameter) TableName() string {
	return "product_parameters"
}

// OrderState представляет состояние заказа
type OrderState string

const (
	OrderStateBasket    OrderState = "basket"    // Корзина, единственное начальное состояние
	OrderStateNew       OrderState = "new"       // Подтверждён пользователем
	OrderStateConfirmed OrderState = "confirmed" // Подтверждён магазином
	OrderStateAssembled OrderState = "assembled" // Собран
	OrderStateSent      OrderState = "sent"      // Отправлен
	OrderStateDelivered OrderState = "delivered" // Доставлен, терминальное
	OrderStateCanceled  OrderState = "canceled"  // Отменён, терминальное
)

// Order представляет заказ; в состоянии basket это корзина пользователя
// Частичный уникальный индекс по user_id допускает не больше одной корзины:
// гонка параллельного создания упирается в него и разрешается перечитыванием
type Order struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index;index:idx_orders_user_basket,unique,where:state = 'basket'"`
	State     OrderState  `json:"state" gorm:"type:varchar(20);not null;default:'basket'"`
	ContactID *uuid.UUID  `json:"contact_id,omitempty" gorm:"type:uuid"` // null до подтверждения
	Contact   *Contact    `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Items     []OrderItem `json:"ordered_items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time   `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// TotalSum считает сумму заказа по позициям: quantity * price
// Всегда вычисляется заново, не хранится
func (o *Order) TotalSum() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		if item.ProductInfo == nil {
			continue
		}
		total = total.Add(item.ProductInfo.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// IsTerminal сообщает, что из состояния нет дальнейших переходов
func (s OrderState) IsTerminal() bool {
	return s == OrderStateDelivered || s == OrderStateCanceled
}

// OrderItem представляет позицию заказа
// Позиции создаются пока заказ в состоянии basket и неизменяемы после
type OrderItem struct {
	ID            uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID    `json:"order_id" gorm:"type:uuid;not null;uniqueIndex:idx_order_items_key"`
	ProductInfoID uuid.UUID    `json:"product_info_id" gorm:"type:uuid;not null;uniqueIndex:idx_order_items_key"`
	Quantity      int          `json:"quantity" gorm:"not null;check:quantity > 0"`
	ProductInfo   *ProductInfo `json:"product_info,omitempty" gorm:"foreignKey:ProductInfoID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// ImportTaskStatus представляет статус фоновой задачи импорта
type ImportTaskStatus string

const (
	ImportTaskQueued  ImportTaskStatus = "queued"
	ImportTaskRunning ImportTaskStatus = "running"
	ImportTaskDone    ImportTaskStatus = "done"
	ImportTaskError   ImportTaskStatus = "error"
)

// ImportStats агрегирует результат импорта прайс-листа
type ImportStats struct {
	Created int `json:"created" bson:"created"`
	Updated int `json:"updated" bson:"updated"`
	Errors  int `json:"errors" bson:"errors"`
}

// ImportTask представляет задачу импорта прайс-листа, хранится в MongoDB
// Клиент получает task_id сразу и опрашивает статус отдельным запросом
type ImportTask struct {
	TaskID     string           `json:"task_id" bson:"task_id"`
	UserID     string           `json:"user_id" bson:"user_id"`
	ShopID     string           `json:"shop_id" bson:"shop_id"`
	FileName   string           `json:"file_name" bson:"file_name"`
	Status     ImportTaskStatus `json:"status" bson:"status"`
	Stats      *ImportStats     `json:"stats,omitempty" bson:"stats,omitempty"`
	Error      string           `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// OrderEvent представляет событие заказа для Kafka
// Отправляется при переходе basket -> new, background consumer шлёт письмо
type OrderEvent struct {
	EventType string          `json:"event_type"` // ORDER_CONFIRMED
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Email     string          `json:"email"`
	TotalSum  decimal.Decimal `json:"total_sum"`
	Timestamp time.Time       `json:"timestamp"`
}
