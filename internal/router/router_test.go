package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/provider"

	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type apiErrorData struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

type apiGoods struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Cost *string `json:"cost"`
}

type apiMart struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	BrowseCount int64      `json:"browse_count"`
	Goods       []apiGoods `json:"goods"`
}

type apiOrder struct {
	ID          string `json:"id"`
	OrderNo     string `json:"order_no"`
	Status      string `json:"status"`
	TotalAmount string `json:"total_amount"`
}

type routerFixture struct {
	engine         *gin.Engine
	organizerToken string
	buyerToken     string
	strangerToken  string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	setupRouterTestDB(t)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		UserJWT: config.JWTConfig{SecretKey: "router-e2e-secret", Issuer: "vanmart-test", ExpireHours: 1},
		Order: config.OrderConfig{
			OrderNoPrefix:      "VM",
			OrderNoMaxAttempts: 3,
			MaxItemsPerOrder:   10,
		},
	}
	container := provider.NewContainer(cfg)
	fx := &routerFixture{engine: SetupRouter(cfg, container)}

	mint := func(userID string) string {
		token, _, err := container.UserAuthService.GenerateUserJWT(userID, "", 1)
		if err != nil {
			t.Fatalf("generate token failed: %v", err)
		}
		return token
	}
	fx.organizerToken = mint("organizer-e2e")
	fx.buyerToken = mint("buyer-e2e")
	fx.strangerToken = mint("stranger-e2e")
	return fx
}

func (fx *routerFixture) do(t *testing.T, method, path, token string, body interface{}) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	fx.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s: http status want 200 got %d (%s)", method, path, w.Code, w.Body.String())
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: unmarshal response failed: %v", method, path, err)
	}
	return resp
}

func mustData(t *testing.T, resp apiResponse, dest interface{}) {
	t.Helper()
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		t.Fatalf("unmarshal data failed: %v", err)
	}
}

func expectError(t *testing.T, resp apiResponse, code int, kind, reason string) {
	t.Helper()
	if resp.StatusCode != code {
		t.Fatalf("status_code want %d got %d (%s)", code, resp.StatusCode, resp.Msg)
	}
	if kind == "" {
		return
	}
	var data apiErrorData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal error data failed: %v", err)
	}
	if data.Kind != kind || data.Reason != reason {
		t.Fatalf("error want %s/%s got %s/%s", kind, reason, data.Kind, data.Reason)
	}
}

func (fx *routerFixture) createMart(t *testing.T) apiMart {
	t.Helper()
	resp := fx.do(t, http.MethodPost, "/api/v1/marts", fx.organizerToken, map[string]interface{}{
		"topic":          "周末水果团",
		"freight_amount": "8.00",
		"goods": []map[string]interface{}{
			{"name": "阳光玫瑰", "price": "19.90", "cost": "12.00", "stock": 10, "purchase_limit": 3},
		},
	})
	var mart apiMart
	mustData(t, resp, &mart)
	if mart.ID == "" || len(mart.Goods) != 1 {
		t.Fatalf("created mart invalid: %+v", mart)
	}
	return mart
}

func TestHealth(t *testing.T) {
	fx := newRouterFixture(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := httptest.NewRecorder()
		fx.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status want 200 got %d", path, w.Code)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	fx := newRouterFixture(t)
	expectError(t, fx.do(t, http.MethodGet, "/api/v1/orders", "", nil), 401, "", "")
	expectError(t, fx.do(t, http.MethodPost, "/api/v1/marts", "", map[string]interface{}{}), 401, "", "")
}

func TestMartDetailHidesCostFromNonOrganizer(t *testing.T) {
	fx := newRouterFixture(t)
	mart := fx.createMart(t)

	var guestView apiMart
	mustData(t, fx.do(t, http.MethodGet, "/api/v1/marts/"+mart.ID, "", nil), &guestView)
	if guestView.Goods[0].Cost != nil {
		t.Fatalf("guest should not see cost, got %s", *guestView.Goods[0].Cost)
	}
	if guestView.BrowseCount != 1 {
		t.Fatalf("browse_count want 1 got %d", guestView.BrowseCount)
	}

	var ownerView apiMart
	mustData(t, fx.do(t, http.MethodGet, "/api/v1/marts/"+mart.ID, fx.organizerToken, nil), &ownerView)
	if ownerView.Goods[0].Cost == nil || *ownerView.Goods[0].Cost != "12.00" {
		t.Fatalf("organizer should see cost 12.00, got %+v", ownerView.Goods[0].Cost)
	}

	expectError(t, fx.do(t, http.MethodGet, "/api/v1/marts/missing-mart", "", nil), 404, "not_found", "mart_not_found")
}

func TestOrderFlowOverHTTP(t *testing.T) {
	fx := newRouterFixture(t)
	mart := fx.createMart(t)
	goodsID := mart.Goods[0].ID

	placeBody := func(quantity int) map[string]interface{} {
		return map[string]interface{}{
			"mart_id":        mart.ID,
			"receiver_name":  "张三",
			"receiver_phone": "13800000000",
			"province":       "浙江省",
			"city":           "杭州市",
			"district":       "西湖区",
			"detail_address": "文三路 1 号",
			"items":          []map[string]interface{}{{"goods_id": goodsID, "quantity": quantity}},
		}
	}

	var order apiOrder
	mustData(t, fx.do(t, http.MethodPost, "/api/v1/orders", fx.buyerToken, placeBody(2)), &order)
	if order.Status != "created" || order.TotalAmount != "47.80" {
		t.Fatalf("order want created/47.80 got %s/%s", order.Status, order.TotalAmount)
	}

	expectError(t, fx.do(t, http.MethodPost, "/api/v1/orders", fx.buyerToken, placeBody(2)), 400, "validation", "purchase_limit_exceeded")
	expectError(t, fx.do(t, http.MethodPost, "/api/v1/orders", fx.buyerToken, placeBody(0)), 400, "", "")

	expectError(t, fx.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, fx.strangerToken, nil), 403, "forbidden", "forbidden")
	expectError(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.buyerToken, map[string]string{"status": "shipped"}), 400, "validation", "illegal_transition")
	expectError(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.organizerToken, map[string]string{"status": "lost"}), 400, "", "")

	var pending apiOrder
	mustData(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.organizerToken, map[string]string{"status": "pending_shipment"}), &pending)
	if pending.Status != "pending_shipment" {
		t.Fatalf("status want pending_shipment got %s", pending.Status)
	}
	expectError(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.buyerToken, map[string]string{"status": "shipped"}), 403, "forbidden", "forbidden")
	expectError(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.organizerToken, map[string]string{"status": "shipped"}), 400, "validation", "missing_shipping_fields")
	expectError(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.organizerToken, map[string]string{"status": "completed"}), 400, "validation", "illegal_transition")

	listResp := fx.do(t, http.MethodGet, "/api/v1/orders?page=1&page_size=10", fx.buyerToken, nil)
	var listed []apiOrder
	mustData(t, listResp, &listed)
	if len(listed) != 1 || listResp.Pagination == nil || listResp.Pagination.Total != 1 {
		t.Fatalf("buyer list want 1 order got %d", len(listed))
	}
	orgResp := fx.do(t, http.MethodGet, "/api/v1/orders?scope=organizer&mart_id="+mart.ID, fx.organizerToken, nil)
	mustData(t, orgResp, &listed)
	if len(listed) != 1 {
		t.Fatalf("organizer list want 1 order got %d", len(listed))
	}
	expectError(t, fx.do(t, http.MethodGet, "/api/v1/orders?scope=organizer&mart_id="+mart.ID, fx.strangerToken, nil), 403, "forbidden", "forbidden")

	var summary struct {
		OrderCount  int    `json:"order_count"`
		TotalAmount string `json:"total_amount"`
		Profit      string `json:"profit"`
	}
	mustData(t, fx.do(t, http.MethodGet, "/api/v1/marts/"+mart.ID+"/summary", fx.organizerToken, nil), &summary)
	if summary.OrderCount != 1 || summary.TotalAmount != "47.80" {
		t.Fatalf("summary want 1/47.80 got %d/%s", summary.OrderCount, summary.TotalAmount)
	}
	expectError(t, fx.do(t, http.MethodGet, "/api/v1/marts/"+mart.ID+"/summary", fx.buyerToken, nil), 403, "forbidden", "forbidden")

	var stats struct {
		OrderCount int `json:"order_count"`
	}
	mustData(t, fx.do(t, http.MethodGet, "/api/v1/me/stats/orders", fx.buyerToken, nil), &stats)
	if stats.OrderCount != 1 {
		t.Fatalf("user stats order_count want 1 got %d", stats.OrderCount)
	}
}

func TestMartCloseAndEndOverHTTP(t *testing.T) {
	fx := newRouterFixture(t)
	mart := fx.createMart(t)

	expectError(t, fx.do(t, http.MethodPost, "/api/v1/marts/"+mart.ID+"/close", fx.buyerToken, nil), 403, "forbidden", "forbidden")

	var closed apiMart
	mustData(t, fx.do(t, http.MethodPost, "/api/v1/marts/"+mart.ID+"/close", fx.organizerToken, nil), &closed)
	if closed.Status != "closed" {
		t.Fatalf("mart status want closed got %s", closed.Status)
	}

	resp := fx.do(t, http.MethodPost, "/api/v1/orders", fx.buyerToken, map[string]interface{}{
		"mart_id":        mart.ID,
		"receiver_name":  "张三",
		"receiver_phone": "13800000000",
		"province":       "浙江省",
		"city":           "杭州市",
		"district":       "西湖区",
		"detail_address": "文三路 1 号",
		"items":          []map[string]interface{}{{"goods_id": mart.Goods[0].ID, "quantity": 1}},
	})
	expectError(t, resp, 409, "precondition", "mart_not_open")

	var ended struct {
		Mart           apiMart `json:"mart"`
		AdvancedOrders int     `json:"advanced_orders"`
	}
	mustData(t, fx.do(t, http.MethodPost, "/api/v1/marts/"+mart.ID+"/end", fx.organizerToken, nil), &ended)
	if ended.Mart.Status != "ended" {
		t.Fatalf("mart status want ended got %s", ended.Mart.Status)
	}

	listResp := fx.do(t, http.MethodGet, "/api/v1/marts", fx.organizerToken, nil)
	var mine []apiMart
	mustData(t, listResp, &mine)
	if len(mine) != 1 || mine[0].ID != mart.ID {
		t.Fatalf("my marts want [%s] got %+v", mart.ID, mine)
	}
}

func TestMessagesOverHTTP(t *testing.T) {
	fx := newRouterFixture(t)

	resp := fx.do(t, http.MethodGet, "/api/v1/messages", fx.buyerToken, nil)
	var page struct {
		Items       []json.RawMessage `json:"items"`
		UnreadCount int64             `json:"unread_count"`
	}
	mustData(t, resp, &page)
	if len(page.Items) != 0 || page.UnreadCount != 0 {
		t.Fatalf("empty inbox expected, got %d items", len(page.Items))
	}

	expectError(t, fx.do(t, http.MethodPost, "/api/v1/messages/missing/read", fx.buyerToken, nil), 404, "not_found", "message_not_found")

	var readAll struct {
		Updated int64 `json:"updated"`
	}
	mustData(t, fx.do(t, http.MethodPost, "/api/v1/messages/read-all", fx.buyerToken, nil), &readAll)
	if readAll.Updated != 0 {
		t.Fatalf("updated want 0 got %d", readAll.Updated)
	}
}

func TestPublicMartListAndGoodsDeletionOverHTTP(t *testing.T) {
	fx := newRouterFixture(t)
	mart := fx.createMart(t)
	goodsID := mart.Goods[0].ID

	listResp := fx.do(t, http.MethodGet, "/api/v1/public/marts?status=open", "", nil)
	var listed []apiMart
	mustData(t, listResp, &listed)
	if len(listed) != 1 || listed[0].ID != mart.ID {
		t.Fatalf("public marts want [%s] got %+v", mart.ID, listed)
	}
	if listResp.Pagination == nil || listResp.Pagination.Total != 1 {
		t.Fatalf("public marts pagination total want 1 got %+v", listResp.Pagination)
	}
	var others []apiMart
	mustData(t, fx.do(t, http.MethodGet, "/api/v1/public/marts?user_id=stranger-e2e", "", nil), &others)
	if len(others) != 0 {
		t.Fatalf("filter by organizer should exclude other marts, got %+v", others)
	}
	expectError(t, fx.do(t, http.MethodGet, "/api/v1/public/marts?status=archived", "", nil), 400, "validation", "invalid_mart_input")

	address := map[string]interface{}{
		"mart_id":        mart.ID,
		"receiver_name":  "张三",
		"receiver_phone": "13800000000",
		"province":       "浙江省",
		"city":           "杭州市",
		"detail_address": "文三路 1 号",
		"items":          []map[string]interface{}{{"goods_id": goodsID, "quantity": 1}},
	}
	expectError(t, fx.do(t, http.MethodPost, "/api/v1/orders", fx.buyerToken, address), 400, "", "")

	address["district"] = "西湖区"
	var order apiOrder
	mustData(t, fx.do(t, http.MethodPost, "/api/v1/orders", fx.buyerToken, address), &order)

	deletePath := "/api/v1/marts/" + mart.ID + "/goods/" + goodsID
	expectError(t, fx.do(t, http.MethodDelete, deletePath, fx.strangerToken, nil), 403, "forbidden", "forbidden")
	var deleted struct {
		Deleted bool `json:"deleted"`
	}
	mustData(t, fx.do(t, http.MethodDelete, deletePath, fx.organizerToken, nil), &deleted)
	if !deleted.Deleted {
		t.Fatalf("goods delete should report deleted")
	}
	expectError(t, fx.do(t, http.MethodDelete, deletePath, fx.organizerToken, nil), 400, "validation", "goods_not_found")

	var canceled apiOrder
	mustData(t, fx.do(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", fx.buyerToken, map[string]interface{}{
		"status": "canceled",
	}), &canceled)
	if canceled.Status != "canceled" {
		t.Fatalf("cancel after goods deletion want canceled got %s", canceled.Status)
	}
}
