/*
 * @Author: AsisYu 2773943729@qq.com
 * @Date: 2025-08-12
 * @Description: 工作池 - 批量查询的并发控制
 */
package services

import (
	"context"
	"sync"
)

// WorkerPool 固定大小的工作池
type WorkerPool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	workers int
}

// NewWorkerPool 创建指定工作者数量的工作池
func NewWorkerPool(workers int) *WorkerPool {
	return &WorkerPool{
		tasks:   make(chan func(), workers*2),
		workers: workers,
	}
}

// Start 启动工作池
func (p *WorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
}

// SubmitWithContext 提交任务；队列已满时等待空位，上下文取消时放弃
func (p *WorkerPool) SubmitWithContext(ctx context.Context, task func()) bool {
	select {
	case p.tasks <- task:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop 停止工作池并等待在途任务完成
func (p *WorkerPool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
