package grpc

// proto.go describes letsema.mfi.v1.MFIService by hand. Messages travel
// through the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "letsema.mfi.v1.MFIService"

// MFIServiceServer is the server API for MFIService.
type MFIServiceServer interface {
	RegisterInstitution(context.Context, *RegisterInstitutionRequest) (*InstitutionMsg, error)
	RegisterBorrower(context.Context, *RegisterBorrowerRequest) (*BorrowerMsg, error)
	ComputeSchedule(context.Context, *ComputeScheduleRequest) (*ScheduleMsg, error)
	SubmitLoanApplication(context.Context, *SubmitLoanApplicationRequest) (*LoanMsg, error)
	ReviewLoanApplication(context.Context, *ReviewLoanApplicationRequest) (*LoanMsg, error)
	GetLoan(context.Context, *GetLoanRequest) (*LoanMsg, error)
	SubmitRepayment(context.Context, *SubmitRepaymentRequest) (*RepaymentMsg, error)
	VerifyRepayment(context.Context, *VerifyRepaymentRequest) (*VerifyRepaymentResponse, error)
	ListLoanRepayments(context.Context, *ListLoanRepaymentsRequest) (*ListLoanRepaymentsResponse, error)
	RecordCreditHistory(context.Context, *RecordCreditHistoryRequest) (*CreditRecordMsg, error)
	AggregateCreditHistory(context.Context, *AggregateCreditHistoryRequest) (*AggregateCreditHistoryResponse, error)
	GetCreditHistory(context.Context, *GetCreditHistoryRequest) (*CreditProfileMsg, error)
	GetCreditHistoryStats(context.Context, *GetCreditHistoryStatsRequest) (*CreditHistoryStatsMsg, error)
}

// RegisterMFIServiceServer registers srv with the gRPC server.
func RegisterMFIServiceServer(s grpclib.ServiceRegistrar, srv MFIServiceServer) {
	s.RegisterService(&mfiServiceDesc, srv)
}

var mfiServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MFIServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unaryMethod("RegisterInstitution", func(s MFIServiceServer, ctx context.Context, in *RegisterInstitutionRequest) (any, error) {
			return s.RegisterInstitution(ctx, in)
		}),
		unaryMethod("RegisterBorrower", func(s MFIServiceServer, ctx context.Context, in *RegisterBorrowerRequest) (any, error) {
			return s.RegisterBorrower(ctx, in)
		}),
		unaryMethod("ComputeSchedule", func(s MFIServiceServer, ctx context.Context, in *ComputeScheduleRequest) (any, error) {
			return s.ComputeSchedule(ctx, in)
		}),
		unaryMethod("SubmitLoanApplication", func(s MFIServiceServer, ctx context.Context, in *SubmitLoanApplicationRequest) (any, error) {
			return s.SubmitLoanApplication(ctx, in)
		}),
		unaryMethod("ReviewLoanApplication", func(s MFIServiceServer, ctx context.Context, in *ReviewLoanApplicationRequest) (any, error) {
			return s.ReviewLoanApplication(ctx, in)
		}),
		unaryMethod("GetLoan", func(s MFIServiceServer, ctx context.Context, in *GetLoanRequest) (any, error) {
			return s.GetLoan(ctx, in)
		}),
		unaryMethod("SubmitRepayment", func(s MFIServiceServer, ctx context.Context, in *SubmitRepaymentRequest) (any, error) {
			return s.SubmitRepayment(ctx, in)
		}),
		unaryMethod("VerifyRepayment", func(s MFIServiceServer, ctx context.Context, in *VerifyRepaymentRequest) (any, error) {
			return s.VerifyRepayment(ctx, in)
		}),
		unaryMethod("ListLoanRepayments", func(s MFIServiceServer, ctx context.Context, in *ListLoanRepaymentsRequest) (any, error) {
			return s.ListLoanRepayments(ctx, in)
		}),
		unaryMethod("RecordCreditHistory", func(s MFIServiceServer, ctx context.Context, in *RecordCreditHistoryRequest) (any, error) {
			return s.RecordCreditHistory(ctx, in)
		}),
		unaryMethod("AggregateCreditHistory", func(s MFIServiceServer, ctx context.Context, in *AggregateCreditHistoryRequest) (any, error) {
			return s.AggregateCreditHistory(ctx, in)
		}),
		unaryMethod("GetCreditHistory", func(s MFIServiceServer, ctx context.Context, in *GetCreditHistoryRequest) (any, error) {
			return s.GetCreditHistory(ctx, in)
		}),
		unaryMethod("GetCreditHistoryStats", func(s MFIServiceServer, ctx context.Context, in *GetCreditHistoryStatsRequest) (any, error) {
			return s.GetCreditHistoryStats(ctx, in)
		}),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "letsema/mfi/v1/mfi.proto",
}

// unaryMethod builds the method descriptor that generated code would
// otherwise spell out once per RPC.
func unaryMethod[Req any](
	name string,
	call func(s MFIServiceServer, ctx context.Context, in *Req) (any, error),
) grpclib.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(MFIServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
