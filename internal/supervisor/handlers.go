package supervisor

import (
	"github.com/kornnellio/svcsuper/internal/ipc"
	"github.com/kornnellio/svcsuper/internal/status"
)

// methodTable builds the sorted dispatch table for the three IPC methods
// the supervisor answers, matching supervisor_dispatch_table in
// supervise.c.
func (s *Supervisor) methodTable() ipc.Table {
	return ipc.NewTable(
		ipc.MethodEntry{Method: "kill", Handler: s.ipcKill},
		ipc.MethodEntry{Method: "restart", Handler: s.ipcRestart},
		ipc.MethodEntry{Method: "status", Handler: s.ipcStatus},
	)
}

func (s *Supervisor) ipcKill(req ipc.Object) (ipc.Object, error) {
	s.ctrl.Kill(true)

	reply := ipc.Object{}
	ipc.Prepare(reply, "kill", ipc.IDOf(req), true)
	reply["success"] = true
	return reply, nil
}

func (s *Supervisor) ipcRestart(req ipc.Object) (ipc.Object, error) {
	rec := s.ctrl.Record()
	rec.RestartCount = 0

	s.ctrl.Kill(true)
	if err := s.ctrl.Start(); err != nil {
		return nil, err
	}

	reply := ipc.Object{}
	ipc.Prepare(reply, "restart", ipc.IDOf(req), true)
	reply["success"] = true
	reply["pid"] = rec.PID
	return reply, nil
}

func (s *Supervisor) ipcStatus(req ipc.Object) (ipc.Object, error) {
	rec := s.ctrl.Record()

	reply := ipc.Object{}
	ipc.Prepare(reply, "status", ipc.IDOf(req), true)

	reply["prog_name"] = rec.ProgName
	if rec.Chroot != "" {
		reply["dir_chroot"] = rec.Chroot
	}
	if rec.Chdir != "" {
		reply["dir_chdir"] = rec.Chdir
	}
	reply["pid"] = rec.PID
	reply["alive"] = status.Alive(rec.PID)
	if name, err := status.Name(rec.PID); err == nil {
		reply["proc_name"] = name
	}
	reply["uid"] = rec.UID
	reply["gid"] = rec.GID
	reply["restart_count"] = rec.RestartCount
	reply["respawn_delay"] = int64(rec.RespawnDelay.Seconds())
	reply["respawn_max"] = rec.RespawnMax
	reply["respawn_period"] = int64(rec.RespawnPeriod.Seconds())
	reply["respawn_last"] = rec.RespawnLast.Unix()

	return reply, nil
}
