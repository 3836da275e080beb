package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"

	"github.com/rl1809/car-purchase/internal/core/domain"
)

// Messages travel as JSON; clients select the codec with
// grpc.CallContentSubtype(JSONCodecName).
const JSONCodecName = "json"

const purchaseServiceName = "purchase.v1.PurchaseService"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type CreatePurchaseRequest struct {
	RequestID string                `json:"request_id,omitempty"`
	Purchase  domain.PurchaseFields `json:"purchase"`
}

type CreatePurchaseResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type GetPurchaseRequest struct {
	ID string `json:"id"`
}

type GetPurchaseResponse struct {
	Purchase domain.Purchase `json:"purchase"`
}

type UpdatePurchaseRequest struct {
	ID       string                `json:"id"`
	Purchase domain.PurchaseFields `json:"purchase"`
}

type DeletePurchaseRequest struct {
	ID string `json:"id"`
}

type MessageReply struct {
	Message string `json:"message"`
}

// ListPurchasesRequest lists every purchase, or one user's when UserID is set.
type ListPurchasesRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type ListPurchasesResponse struct {
	Purchases []domain.Purchase `json:"purchases"`
}

type PurchaseServiceServer interface {
	CreatePurchase(context.Context, *CreatePurchaseRequest) (*CreatePurchaseResponse, error)
	GetPurchase(context.Context, *GetPurchaseRequest) (*GetPurchaseResponse, error)
	UpdatePurchase(context.Context, *UpdatePurchaseRequest) (*MessageReply, error)
	DeletePurchase(context.Context, *DeletePurchaseRequest) (*MessageReply, error)
	ListPurchases(context.Context, *ListPurchasesRequest) (*ListPurchasesResponse, error)
}

func RegisterPurchaseServiceServer(s grpc.ServiceRegistrar, srv PurchaseServiceServer) {
	s.RegisterService(&purchaseServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](method string, call func(PurchaseServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + purchaseServiceName + "/" + method

	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PurchaseServiceServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(PurchaseServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var purchaseServiceDesc = grpc.ServiceDesc{
	ServiceName: purchaseServiceName,
	HandlerType: (*PurchaseServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreatePurchase", PurchaseServiceServer.CreatePurchase),
		unaryHandler("GetPurchase", PurchaseServiceServer.GetPurchase),
		unaryHandler("UpdatePurchase", PurchaseServiceServer.UpdatePurchase),
		unaryHandler("DeletePurchase", PurchaseServiceServer.DeletePurchase),
		unaryHandler("ListPurchases", PurchaseServiceServer.ListPurchases),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "purchase/v1/purchase.proto",
}

type PurchaseServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewPurchaseServiceClient(cc grpc.ClientConnInterface) *PurchaseServiceClient {
	return &PurchaseServiceClient{cc: cc}
}

func (c *PurchaseServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+purchaseServiceName+"/"+method, in, out, opts...)
}

func (c *PurchaseServiceClient) CreatePurchase(ctx context.Context, in *CreatePurchaseRequest, opts ...grpc.CallOption) (*CreatePurchaseResponse, error) {
	out := new(CreatePurchaseResponse)
	if err := c.invoke(ctx, "CreatePurchase", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PurchaseServiceClient) GetPurchase(ctx context.Context, in *GetPurchaseRequest, opts ...grpc.CallOption) (*GetPurchaseResponse, error) {
	out := new(GetPurchaseResponse)
	if err := c.invoke(ctx, "GetPurchase", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PurchaseServiceClient) UpdatePurchase(ctx context.Context, in *UpdatePurchaseRequest, opts ...grpc.CallOption) (*MessageReply, error) {
	out := new(MessageReply)
	if err := c.invoke(ctx, "UpdatePurchase", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PurchaseServiceClient) DeletePurchase(ctx context.Context, in *DeletePurchaseRequest, opts ...grpc.CallOption) (*MessageReply, error) {
	out := new(MessageReply)
	if err := c.invoke(ctx, "DeletePurchase", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PurchaseServiceClient) ListPurchases(ctx context.Context, in *ListPurchasesRequest, opts ...grpc.CallOption) (*ListPurchasesResponse, error) {
	out := new(ListPurchasesResponse)
	if err := c.invoke(ctx, "ListPurchases", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
