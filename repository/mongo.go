package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// MongoOrderRepository persists orders in the orders collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a Mongo-backed order repository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) (string, error) {
	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	id := result.InsertedID.(primitive.ObjectID)
	order.ID = id
	return id.Hex(), nil
}

func (r *MongoOrderRepository) Get(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrNotFound
	}

	var order models.Order
	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// MarkPaid uses a filtered update so only a still-pending order transitions.
// Duplicate reconciliation attempts match nothing and report false.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentCompleted,
			"order_status":   models.OrderConfirmed,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoOrderRepository) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentFailed,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order failed: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoOrderRepository) ResetPending(ctx context.Context, orderID string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": models.PaymentFailed},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentPending,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to reset order: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoOrderRepository) SetPaymentSession(ctx context.Context, orderID, sessionID string) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return ErrNotFound
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"payment_session_id": sessionID,
			"payment_status":     models.PaymentPending,
			"updated_at":         time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) SetOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"order_status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) FindByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"customer.email": email})
}

func (r *MongoOrderRepository) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return r.find(ctx, bson.M{"order_status": status})
}

func (r *MongoOrderRepository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return r.find(ctx, bson.M{
		"payment_status": models.PaymentPending,
		"payment_method": models.PaymentHostedRedirect,
		"created_at":     bson.M{"$lt": cutoff},
	})
}

// ExpirePending cancels an abandoned order. The pending-status filter makes
// it lose the race against a late payment confirmation.
func (r *MongoOrderRepository) ExpirePending(ctx context.Context, orderID string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": models.PaymentPending},
		bson.M{"$set": bson.M{
			"payment_status": models.PaymentFailed,
			"order_status":   models.OrderCancelled,
			"updated_at":     time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to expire order: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// MongoCouponRepository persists coupons in the coupons collection.
type MongoCouponRepository struct {
	collection *mongo.Collection
}

// NewMongoCouponRepository creates a Mongo-backed coupon repository.
func NewMongoCouponRepository(db *mongo.Database) *MongoCouponRepository {
	return &MongoCouponRepository{collection: db.Collection("coupons")}
}

func codeFilter(code string) bson.M {
	// Codes match case-insensitively.
	return bson.M{"code": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(code) + "$",
		Options: "i",
	}}
}

func (r *MongoCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.collection.FindOne(ctx, codeFilter(code)).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	return &coupon, nil
}

func (r *MongoCouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var coupons []models.Coupon
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}
	return coupons, nil
}

func (r *MongoCouponRepository) Create(ctx context.Context, coupon *models.Coupon) (string, error) {
	coupon.CreatedAt = time.Now()
	coupon.UpdatedAt = coupon.CreatedAt
	result, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		return "", fmt.Errorf("failed to insert coupon: %w", err)
	}
	id := result.InsertedID.(primitive.ObjectID)
	coupon.ID = id
	return id.Hex(), nil
}

func (r *MongoCouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	coupon.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": coupon.ID}, coupon)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCouponRepository) Delete(ctx context.Context, couponID string) error {
	id, err := primitive.ObjectIDFromHex(couponID)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RedeemOnce increments used_count with a server-side guard comparing it to
// usage_limit, so concurrent redemptions cannot push a coupon past its limit.
func (r *MongoCouponRepository) RedeemOnce(ctx context.Context, code string) (bool, error) {
	filter := codeFilter(code)
	filter["$expr"] = bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return false, fmt.Errorf("failed to redeem coupon: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// MongoCartRepository persists carts keyed by owner id.
type MongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository creates a Mongo-backed cart repository.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection("carts")}
}

func (r *MongoCartRepository) Get(ctx context.Context, ownerID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

func (r *MongoCartRepository) Put(ctx context.Context, cart *models.Cart) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"owner_id": cart.OwnerID}, cart, opts)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *MongoCartRepository) Clear(ctx context.Context, ownerID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MongoSettingsRepository stores the single site-settings document.
type MongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingsRepository creates a Mongo-backed settings repository.
func NewMongoSettingsRepository(db *mongo.Database) *MongoSettingsRepository {
	return &MongoSettingsRepository{collection: db.Collection("settings")}
}

func (r *MongoSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

func (r *MongoSettingsRepository) Put(ctx context.Context, settings *models.SiteSettings) error {
	settings.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{}, settings, opts)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
