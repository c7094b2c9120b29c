package attendancev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "attendance.v1.AttendanceService"

const (
	AttendanceService_ProcessAttendance_FullMethodName      = "/" + ServiceName + "/ProcessAttendance"
	AttendanceService_ProcessAttendanceBatch_FullMethodName = "/" + ServiceName + "/ProcessAttendanceBatch"
	AttendanceService_ListAttendance_FullMethodName         = "/" + ServiceName + "/ListAttendance"
)

// AttendanceServiceServer は AttendanceService のサーバー側インターフェースです。
type AttendanceServiceServer interface {
	ProcessAttendance(context.Context, *ProcessAttendanceRequest) (*ProcessAttendanceResponse, error)
	ProcessAttendanceBatch(context.Context, *ProcessAttendanceBatchRequest) (*ProcessAttendanceBatchResponse, error)
	ListAttendance(context.Context, *ListAttendanceRequest) (*ListAttendanceResponse, error)
}

// UnimplementedAttendanceServiceServer は未実装メソッドに Unimplemented を返します。
type UnimplementedAttendanceServiceServer struct{}

func (UnimplementedAttendanceServiceServer) ProcessAttendance(context.Context, *ProcessAttendanceRequest) (*ProcessAttendanceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ProcessAttendance not implemented")
}

func (UnimplementedAttendanceServiceServer) ProcessAttendanceBatch(context.Context, *ProcessAttendanceBatchRequest) (*ProcessAttendanceBatchResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ProcessAttendanceBatch not implemented")
}

func (UnimplementedAttendanceServiceServer) ListAttendance(context.Context, *ListAttendanceRequest) (*ListAttendanceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAttendance not implemented")
}

// RegisterAttendanceServiceServer は srv を s に登録します。
func RegisterAttendanceServiceServer(s grpc.ServiceRegistrar, srv AttendanceServiceServer) {
	s.RegisterService(&AttendanceService_ServiceDesc, srv)
}

func _AttendanceService_ProcessAttendance_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessAttendanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttendanceServiceServer).ProcessAttendance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AttendanceService_ProcessAttendance_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttendanceServiceServer).ProcessAttendance(ctx, req.(*ProcessAttendanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _AttendanceService_ProcessAttendanceBatch_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessAttendanceBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttendanceServiceServer).ProcessAttendanceBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AttendanceService_ProcessAttendanceBatch_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttendanceServiceServer).ProcessAttendanceBatch(ctx, req.(*ProcessAttendanceBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _AttendanceService_ListAttendance_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListAttendanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttendanceServiceServer).ListAttendance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AttendanceService_ListAttendance_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttendanceServiceServer).ListAttendance(ctx, req.(*ListAttendanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AttendanceService_ServiceDesc は AttendanceService の grpc.ServiceDesc です。
var AttendanceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AttendanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProcessAttendance",
			Handler:    _AttendanceService_ProcessAttendance_Handler,
		},
		{
			MethodName: "ProcessAttendanceBatch",
			Handler:    _AttendanceService_ProcessAttendanceBatch_Handler,
		},
		{
			MethodName: "ListAttendance",
			Handler:    _AttendanceService_ListAttendance_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "attendance/v1/attendance.proto",
}

// AttendanceServiceClient は AttendanceService のクライアントです。
type AttendanceServiceClient interface {
	ProcessAttendance(ctx context.Context, in *ProcessAttendanceRequest, opts ...grpc.CallOption) (*ProcessAttendanceResponse, error)
	ProcessAttendanceBatch(ctx context.Context, in *ProcessAttendanceBatchRequest, opts ...grpc.CallOption) (*ProcessAttendanceBatchResponse, error)
	ListAttendance(ctx context.Context, in *ListAttendanceRequest, opts ...grpc.CallOption) (*ListAttendanceResponse, error)
}

type attendanceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAttendanceServiceClient は JSON コーデックで呼び出すクライアントを生成します。
func NewAttendanceServiceClient(cc grpc.ClientConnInterface) AttendanceServiceClient {
	return &attendanceServiceClient{cc: cc}
}

func (c *attendanceServiceClient) ProcessAttendance(ctx context.Context, in *ProcessAttendanceRequest, opts ...grpc.CallOption) (*ProcessAttendanceResponse, error) {
	out := new(ProcessAttendanceResponse)
	if err := c.cc.Invoke(ctx, AttendanceService_ProcessAttendance_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *attendanceServiceClient) ProcessAttendanceBatch(ctx context.Context, in *ProcessAttendanceBatchRequest, opts ...grpc.CallOption) (*ProcessAttendanceBatchResponse, error) {
	out := new(ProcessAttendanceBatchResponse)
	if err := c.cc.Invoke(ctx, AttendanceService_ProcessAttendanceBatch_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *attendanceServiceClient) ListAttendance(ctx context.Context, in *ListAttendanceRequest, opts ...grpc.CallOption) (*ListAttendanceResponse, error) {
	out := new(ListAttendanceResponse)
	if err := c.cc.Invoke(ctx, AttendanceService_ListAttendance_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
